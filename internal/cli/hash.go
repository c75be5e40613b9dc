package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/digest"
)

func newHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash FILE...",
		Short: "Print the MD5 of each FILE the way testwrap computes it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				sum, err := digest.File(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "testwrap: %v\n", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			if failed > 0 {
				return &ExitError{Code: exitFail}
			}
			return nil
		},
	}
}
