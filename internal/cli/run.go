package cli

import (
	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/runner"
)

func runTest(cmd *cobra.Command, opts *rootOptions, args []string) error {
	s, err := loadSettings(cmd, opts)
	if err != nil {
		return usageError(err)
	}

	inv := runner.Invocation{
		TestID:       args[0],
		ExpectedHash: args[1],
		Executable:   args[2],
		Source:       args[3],
		Parameters:   args[4],
	}

	out := cmd.OutOrStdout()
	logger := s.logger(cmd.ErrOrStderr())
	logger.Debug("loaded settings", "config", s.configPath, "mode", s.mode, "timeout", s.timeout)

	r := &runner.Runner{
		Shell:   s.shellRunner(out, cmd.ErrOrStderr()),
		Timeout: s.timeout,
		Out:     out,
		Logger:  logger,
		Color:   colorEnabled(s.cfg.Color, out),
	}
	res, err := r.Run(cmd.Context(), inv)
	if err != nil {
		return fail(err)
	}
	if !res.Passed() {
		logger.Debug("test failed", "id", inv.TestID, "verdict", res.Verdict)
		return &ExitError{Code: exitFail}
	}
	return nil
}
