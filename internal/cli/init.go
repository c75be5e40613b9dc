package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/config"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .testwrap.toml with the current settings",
		Long: `init writes the defaults (or, with --force, the existing file) overlaid
with --mode, --shell, --timeout, --color and --verbose to .testwrap.toml in
the current directory, or to --config when given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "timeout to record (e.g. 30s)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "shell mode to record: system or virtual")
	cmd.Flags().StringVar(&opts.shell, "shell", "", "system shell to record")
	return cmd
}

func runInit(cmd *cobra.Command, opts *rootOptions, force bool) error {
	path := opts.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = filepath.Join(wd, config.FileName)
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if !force {
			return usageError(fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}
		if cfg, err = config.Load(path, true); err != nil {
			return usageError(err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fail(err)
	}

	s, err := overlayFlags(cmd, opts, path, cfg)
	if err != nil {
		return usageError(err)
	}
	if err := config.Save(path, s.cfg); err != nil {
		return fail(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
