// Statcore loads MMORPG content definitions and serves a console over a
// character's cached, derived state.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "statcore",
		Short:        "Derived character state engine for Lua-defined MMORPG content",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.AddCommand(playCmd())
	root.AddCommand(rollCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
