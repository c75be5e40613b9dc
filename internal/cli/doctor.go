package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/brandonbloom/testwrap/internal/staging"
)

func newDoctorCommand(opts *rootOptions) *cobra.Command {
	var showAll bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the shell and configuration testwrap would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, opts, showAll)
		},
	}
	cmd.Flags().BoolVarP(&showAll, "all", "a", false, "show passing checks too")
	return cmd
}

type doctorContext struct {
	settings *settings
}

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) error
}

func runDoctor(cmd *cobra.Command, opts *rootOptions, showAll bool) error {
	ctx := &doctorContext{}
	checks := []doctorCheck{
		{Name: "config loads", Fn: func(c *doctorContext) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			c.settings = s
			return nil
		}},
		{Name: "shell available", Fn: func(c *doctorContext) error {
			if c.settings == nil {
				return errors.New("config not loaded")
			}
			sh := c.settings.shellRunner(nil, nil)
			return sh.Check()
		}},
		{Name: "working directory writable", Fn: checkWritable},
	}

	errs := make([]error, len(checks))
	width := 0
	for i, check := range checks {
		errs[i] = check.Fn(ctx)
		width = max(width, runewidth.StringWidth(check.Name))
	}

	colorSetting := opts.color
	if ctx.settings != nil {
		colorSetting = ctx.settings.cfg.Color
	}
	out := cmd.OutOrStdout()
	good := color.New(color.FgGreen)
	bad := color.New(color.FgHiRed, color.Bold)
	if colorEnabled(colorSetting, out) {
		good.EnableColor()
		bad.EnableColor()
	} else {
		good.DisableColor()
		bad.DisableColor()
	}

	var failures []string
	for i, check := range checks {
		name := runewidth.FillRight(check.Name, width)
		if errs[i] != nil {
			failures = append(failures, fmt.Sprintf("%s %s  %v", bad.Sprint("✗"), name, errs[i]))
			continue
		}
		if showAll {
			fmt.Fprintf(out, "%s %s\n", good.Sprint("✓"), strings.TrimRight(name, " "))
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fail(fmt.Errorf("%d doctor checks failed", len(failures)))
	}

	fmt.Fprintln(out, "healthy!")
	return nil
}

func checkWritable(*doctorContext) error {
	f, err := os.CreateTemp(".", staging.Prefix+"doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Remove(name)
}
