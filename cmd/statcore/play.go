package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/cli"
	"github.com/nathoo/statcore/engine"
	"github.com/nathoo/statcore/tui"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [content_dir]",
		Short: "Open the character console over a content directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	cmd.Flags().Bool("plain", false, "use the line-oriented console instead of the TUI")
	cmd.Flags().String("script", "", "run console commands from a file and exit")
	cmd.Flags().Bool("trace", false, "print events after each command")
	cmd.Flags().String("name", "", "character name")
	cmd.Flags().Int64("seed", 0, "seed for new item random seeds (0 uses the clock)")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	plain, _ := cmd.Flags().GetBool("plain")
	script, _ := cmd.Flags().GetString("script")
	trace, _ := cmd.Flags().GetBool("trace")
	name, _ := cmd.Flags().GetString("name")
	seed, _ := cmd.Flags().GetInt64("seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	eng := engine.New(e.defs, engine.Options{
		CacheTTL:          e.cfg.CacheTTL,
		EarlyExitAilments: e.cfg.EarlyExitAilments,
		LimitWeight:       e.cfg.LimitWeight,
		LimitSlot:         e.cfg.LimitSlot,
		Logger:            e.log,
		Metrics:           reg,
		Seed:              seed,
		Name:              name,
	})
	go eng.RunSweeper(ctx, e.cfg.SweepInterval)

	if e.cfg.MetricsAddr != "" {
		srv := startMetricsServer(e.cfg.MetricsAddr, reg, e.log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Script mode: open file, force plain, echo commands.
	if script != "" {
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(eng, e.cfg.SaveDir, e.log)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return nil
	}

	// Use plain CLI if --plain or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, e.cfg.SaveDir, e.log)
		c.Trace = trace
		c.Run()
		return nil
	}

	return tui.Run(eng, e.cfg.SaveDir, e.log, trace)
}

// startMetricsServer serves /metrics and /health from reg in the background.
func startMetricsServer(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
