package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/version"
)

// Main runs testwrap with args and returns the process exit status.
func Main(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitPass
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(stderr, "testwrap: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	// Anything cobra rejects before RunE is a usage problem.
	fmt.Fprintf(stderr, "testwrap: %v\n", err)
	fmt.Fprintln(stderr, "Run 'testwrap --help' for usage.")
	return exitUsage
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "testwrap [flags] <test_id> <expected_md5> <executable> <source_file> <parameters>",
		Short: "Run an executable against a staged copy of a file and verify the result's MD5",
		Long: `testwrap copies <source_file> to test_file.<test_id> in the current directory,
runs "<executable> <parameters> test_file.<test_id>" through the shell, and
compares the MD5 of the resulting file against <expected_md5>.

Exit status is 0 when the hashes match and 1 when the executable fails or the
hashes differ. The staged file is removed in every case.

<parameters> is passed to the shell verbatim, without quoting. Shell
metacharacters in it are interpreted, so only pass trusted input.

Flags must come before <test_id>. To use a test id that collides with a
subcommand name, put "--" before the positional arguments.`,
		Version:       version.String(),
		Args:          cobra.ExactArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args)
		},
	}
	cmd.Flags().SetInterspersed(false)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $TESTWRAP_CONFIG or ./.testwrap.toml)")
	cmd.PersistentFlags().StringVar(&opts.color, "color", "", "colorize output: auto, always, or never")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostic detail to stderr")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "kill the executable after this long (e.g. 30s); default waits forever")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "shell used for the command line: system or virtual")
	cmd.Flags().StringVar(&opts.shell, "shell", "", "system shell to use instead of /bin/sh")

	cmd.AddCommand(
		newHashCommand(),
		newInitCommand(opts),
		newDoctorCommand(opts),
		newVersionCommand(opts),
	)

	return cmd
}
