package cli

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/version"
)

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the testwrap version (-v adds build details)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			if _, err := fmt.Fprintf(out, "%s version %s\n", root.DisplayName(), root.Version); err != nil {
				return err
			}
			if !opts.verbose {
				return nil
			}
			details := version.Details()
			width := 0
			for _, d := range details {
				width = max(width, runewidth.StringWidth(d.Label))
			}
			for _, d := range details {
				fmt.Fprintf(out, "  %s  %s\n", runewidth.FillRight(d.Label+":", width+1), d.Value)
			}
			return nil
		},
	}
}
