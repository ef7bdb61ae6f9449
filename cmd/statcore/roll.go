package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/statcore/engine"
	"github.com/nathoo/statcore/engine/bonus"
	"github.com/nathoo/statcore/engine/resolve"
	"github.com/nathoo/statcore/types"
)

func rollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll <content_dir> <item>",
		Short: "Print the random bonus an item instance rolls",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoll,
	}
	cmd.Flags().Int("level", 1, "item level")
	cmd.Flags().Int32("seed", 0, "item random seed")
	cmd.Flags().Uint8("version", bonus.LatestVersion, "random bonus generator version")
	return cmd
}

func runRoll(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, args[:1])
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	level, _ := cmd.Flags().GetInt("level")
	seed, _ := cmd.Flags().GetInt32("seed")
	ver, _ := cmd.Flags().GetUint8("version")
	if ver > bonus.LatestVersion {
		return fmt.Errorf("version must be between 0 and %d", bonus.LatestVersion)
	}

	id, err := resolve.Definition(e.defs, resolve.Items, args[1])
	if err != nil {
		return err
	}
	it := types.CharacterItem{DataID: id, Level: level, Amount: 1, RandomSeed: seed, Version: ver}
	for _, line := range engine.FormatRoll(e.defs.Items[id], it) {
		cmd.Println(line)
	}
	return nil
}
