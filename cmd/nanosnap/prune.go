package main

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/spf13/cobra"
)

// pruneResult reports orphaned shard files and what happened to them
type pruneResult struct {
	Orphaned []string `json:"orphaned" yaml:"orphaned"`
	DryRun   bool     `json:"dry_run" yaml:"dry_run"`
}

func (cli *CLI) addPruneCommand() {
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete shard files no longer referenced by index.json",
		Long: `Delete shard files of the json layout that the index no longer lists,
typically left behind by renamed or removed tests.

Examples:
  nanosnap prune --format json --dry-run
  nanosnap prune --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return cli.executePrune(cmd.Context(), dryRun)
		},
	}
	pruneCmd.Flags().BoolP("dry-run", "n", false, "List orphaned shards without deleting them")
	cli.rootCmd.AddCommand(pruneCmd)
}

func (cli *CLI) executePrune(ctx context.Context, dryRun bool) error {
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	split, ok := cli.layout(cfg).(*store.Split)
	if !ok {
		return NewConfigError("prune snapshots", "prune only applies to the json layout",
			"Use --format json", CommonSuggestions.CheckFormat)
	}

	orphans, err := split.OrphanedShards(ctx)
	if err != nil {
		return NewStoreError("prune snapshots", err, CommonSuggestions.CheckDir)
	}

	if !dryRun {
		for _, name := range orphans {
			if err := split.RemoveShard(name); err != nil {
				return NewStoreError("prune snapshots", err)
			}
			cli.logger.Info("removed orphaned shard", "shard", name)
		}
	}

	result := pruneResult{Orphaned: orphans, DryRun: dryRun}
	return cli.render(result, func(w io.Writer) error {
		verb := "Removed"
		if dryRun {
			verb = "Would remove"
		}
		for _, name := range orphans {
			fmt.Fprintf(w, "%s %s\n", verb, name)
		}
		_, err := fmt.Fprintf(w, "%d orphaned shard(s)\n", len(orphans))
		return err
	})
}
