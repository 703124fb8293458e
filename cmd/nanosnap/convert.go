package main

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/nanosnap/internal/buildinfo"
	"github.com/arthur-debert/nanosnap/types"
	"github.com/spf13/cobra"
)

// convertResult reports a layout conversion
type convertResult struct {
	From      string `json:"from" yaml:"from"`
	To        string `json:"to" yaml:"to"`
	Path      string `json:"path" yaml:"path"`
	Snapshots int    `json:"snapshots" yaml:"snapshots"`
}

func (cli *CLI) addConvertCommand() {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite the snapshots in the other layout",
		Long: `Read the snapshots in the configured layout (--format) and write them
in the target layout into the same directory. The source files are kept.

Examples:
  nanosnap convert --to json
  nanosnap convert --format json --to js`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			return cli.executeConvert(cmd.Context(), to)
		},
	}
	convertCmd.Flags().String("to", "", "Target layout: js or json (required)")
	_ = convertCmd.MarkFlagRequired("to")
	cli.rootCmd.AddCommand(convertCmd)
}

func (cli *CLI) executeConvert(ctx context.Context, to string) error {
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	target, err := types.ParseFormat(to)
	if err != nil {
		return NewConfigError("convert snapshots", err.Error(), "Use --to js or --to json")
	}
	if target.IsSplit() == cfg.Format.IsSplit() {
		return NewConfigError("convert snapshots",
			fmt.Sprintf("snapshots are already in the %s layout", cfg.Format),
			"Use --format to select the layout currently on disk")
	}

	src := cli.layout(cfg)
	// a partial load would silently drop snapshots from the converted copy
	state, err := cli.loadState(ctx, "convert snapshots", src, true)
	if err != nil {
		return err
	}
	if state.Version == "" {
		state.Version = buildinfo.Current()
	}

	dst := cli.layout(types.Config{SnapshotPath: cfg.SnapshotPath, Format: target})
	if err := dst.Save(ctx, state); err != nil {
		return NewStoreError("convert snapshots", err, CommonSuggestions.CheckDir)
	}
	cli.logger.Info("converted snapshots", "from", src.Name(), "to", dst.Name(), "count", state.Len())

	result := convertResult{From: src.Name(), To: dst.Name(), Path: dst.Path(), Snapshots: state.Len()}
	return cli.render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Converted %d snapshot(s) from %s to %s layout: %s\n",
			result.Snapshots, result.From, result.To, result.Path)
		return err
	})
}
