package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/statcore/loader"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [content_dir]",
		Short: "Compile and check a content directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := setupConfig(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	out := cmd.OutOrStdout()
	defs, warnings, err := loader.Check(e.cfg.Content)
	var ve *loader.ValidationError
	if err != nil && !errors.As(err, &ve) {
		return err
	}

	if ve != nil {
		fmt.Fprintf(out, "Errors (%d):\n", len(ve.Errors))
		printIssues(out, ve.Errors)
	}
	if len(warnings) > 0 {
		if ve != nil {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnings))
		printIssues(out, warnings)
	}
	if ve != nil {
		e.log.Debug("content invalid", zap.String("dir", e.cfg.Content), zap.Int("errors", len(ve.Errors)))
		return fmt.Errorf("validation found errors")
	}

	fmt.Fprintf(out, "%s %s: %d items, %d skills, %d status effects, %d plugins. No errors.\n",
		defs.Game.Title, defs.Game.Version, len(defs.Items), len(defs.Skills), len(defs.StatusEffects), len(defs.Plugins))
	return nil
}

func printIssues(out io.Writer, issues []string) {
	for _, issue := range issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}
