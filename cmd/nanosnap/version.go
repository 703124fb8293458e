package main

import (
	"fmt"
	"io"

	"github.com/arthur-debert/nanosnap/internal/buildinfo"
	"github.com/spf13/cobra"
)

func (cli *CLI) addVersionCommand() {
	cli.rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.render(buildinfo.Get(), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "nanosnap %s\n", buildinfo.String())
				return err
			})
		},
	})
}
