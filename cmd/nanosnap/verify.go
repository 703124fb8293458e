package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/spf13/cobra"
)

// verifyReport summarizes the health of the snapshot files
type verifyReport struct {
	Layout    string   `json:"layout" yaml:"layout"`
	Path      string   `json:"path" yaml:"path"`
	Version   string   `json:"version" yaml:"version"`
	Snapshots int      `json:"snapshots" yaml:"snapshots"`
	Skipped   []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Orphaned  []string `json:"orphaned,omitempty" yaml:"orphaned,omitempty"`
	OK        bool     `json:"ok" yaml:"ok"`
}

func (cli *CLI) addVerifyCommand() {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every snapshot file can be loaded",
		Long: `Load the snapshots the way a test run does and report files that could
not be read or parsed. Exits with status 1 when any are found. Orphaned
shards of the json layout are reported but do not fail verification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.executeVerify(cmd.Context())
		},
	}
	cli.rootCmd.AddCommand(verifyCmd)
}

func (cli *CLI) executeVerify(ctx context.Context) error {
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	layout := cli.layout(cfg)

	report := verifyReport{Layout: layout.Name(), Path: layout.Path(), OK: true}
	state, err := layout.Load(ctx)
	var partial *store.PartialLoadError
	switch {
	case err == nil:
	case errors.As(err, &partial):
		report.Skipped = partial.Skipped
		report.OK = false
	default:
		return NewStoreError("verify snapshots", err, CommonSuggestions.CheckFormat)
	}
	report.Version = state.Version
	report.Snapshots = state.Len()

	if split, ok := layout.(*store.Split); ok {
		orphans, err := split.OrphanedShards(ctx)
		if err != nil {
			return NewStoreError("verify snapshots", err)
		}
		report.Orphaned = orphans
	}

	if err := cli.render(report, func(w io.Writer) error {
		fmt.Fprintf(w, "%s layout at %s: %d snapshot(s), version %q\n",
			report.Layout, report.Path, report.Snapshots, report.Version)
		if partial != nil {
			for i, name := range partial.Skipped {
				fmt.Fprintf(w, "  unreadable shard %s: %v\n", name, partial.Errs[i])
			}
		}
		for _, name := range report.Orphaned {
			fmt.Fprintf(w, "  orphaned shard %s\n", name)
		}
		return nil
	}); err != nil {
		return err
	}

	if !report.OK {
		return NewStoreError("verify snapshots", err, CommonSuggestions.CheckDir)
	}
	return nil
}
