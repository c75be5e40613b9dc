package cli

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/config"
	"github.com/brandonbloom/testwrap/internal/shell"
)

type rootOptions struct {
	configPath string
	color      string
	verbose    bool
	timeout    string
	mode       string
	shell      string
}

// settings is the config file overlaid with explicitly set flags.
type settings struct {
	configPath string
	cfg        config.Config
	mode       shell.Mode
	timeout    time.Duration
}

func loadSettings(cmd *cobra.Command, opts *rootOptions) (*settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, required := config.Resolve(opts.configPath, wd)
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	return overlayFlags(cmd, opts, path, cfg)
}

// overlayFlags applies the flags the user set explicitly on top of cfg.
func overlayFlags(cmd *cobra.Command, opts *rootOptions, path string, cfg config.Config) (*settings, error) {
	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Color = opts.color
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("shell") {
		cfg.Shell = opts.shell
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := shell.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return &settings{
		configPath: path,
		cfg:        cfg,
		mode:       mode,
		timeout:    timeout,
	}, nil
}

func (s *settings) shellRunner(stdout, stderr io.Writer) shell.Runner {
	return shell.Runner{
		Mode:      s.mode,
		Shell:     s.cfg.Shell,
		ShellArgs: s.cfg.ShellArgs,
		Stdin:     os.Stdin,
		Stdout:    stdout,
		Stderr:    stderr,
	}
}

func (s *settings) logger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if s.cfg.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "testwrap",
		Level:  level,
	})
}
