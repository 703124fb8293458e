package main

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/nanosnap/nanosnap/serialize"
	"github.com/spf13/cobra"
)

func (cli *CLI) addShowCommand() {
	showCmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Print the stored value of a snapshot",
		Long: `Print the stored value of one snapshot. Keys contain spaces, so quote them.

Examples:
  nanosnap show "TestLogin form 1"
  nanosnap show "TestLogin form 1" --markdown
  nanosnap show "TestLogin tree 1" --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, _ := cmd.Flags().GetBool("markdown")
			return cli.executeShow(cmd.Context(), args[0], markdown)
		},
	}
	showCmd.Flags().BoolP("markdown", "m", false, "Render HTML snapshots as Markdown")
	cli.rootCmd.AddCommand(showCmd)
}

func (cli *CLI) executeShow(ctx context.Context, key string, markdown bool) error {
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	state, err := cli.loadState(ctx, "show snapshot", cli.layout(cfg), false)
	if err != nil {
		return err
	}

	value, ok := state.Records[key]
	if !ok {
		return NewNotFoundError("show snapshot", key, CommonSuggestions.CheckKey, CommonSuggestions.CheckFormat)
	}

	if markdown {
		if md, ok := serialize.Markdown(value); ok {
			_, err := fmt.Fprintln(cli.out, md)
			return err
		}
		cli.logger.Debug("snapshot is not HTML, printing as stored", "key", key)
	}

	return cli.render(value, func(w io.Writer) error {
		return writeValue(w, value)
	})
}
