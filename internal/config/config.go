package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/brandonbloom/testwrap/internal/shell"
)

const (
	// FileName is looked up in the working directory when no path is given.
	FileName = ".testwrap.toml"
	// EnvPath names an explicit config file.
	EnvPath = "TESTWRAP_CONFIG"
)

// Config captures the optional settings stored in .testwrap.toml.
type Config struct {
	Mode      string   `toml:"mode,omitempty"`
	Shell     string   `toml:"shell,omitempty"`
	ShellArgs []string `toml:"shell_args,omitempty"`
	Timeout   string   `toml:"timeout,omitempty"`
	Color     string   `toml:"color,omitempty"`
	Verbose   bool     `toml:"verbose,omitempty"`
}

var (
	// ErrInvalidColor indicates the color setting is not recognized.
	ErrInvalidColor = errors.New("config.color must be auto, always, or never")
	// ErrInvalidTimeout indicates the timeout is not a non-negative duration.
	ErrInvalidTimeout = errors.New("config.timeout must be a non-negative duration such as 30s")
)

// Default returns the settings used when no config file exists. They match
// the plain behavior: host shell, no timeout.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = string(shell.ModeSystem)
	}
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
	if c.Color == "" {
		c.Color = "auto"
	}
	c.Timeout = strings.TrimSpace(c.Timeout)
}

// Validate ensures the configuration can guide testwrap's behavior.
func (c Config) Validate() error {
	if _, err := shell.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config.mode: %w", err)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return ErrInvalidColor
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	return ParseTimeout(c.Timeout)
}

// ParseTimeout parses a timeout setting. Empty, "0" and "none" disable it.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" || strings.EqualFold(raw, "none") {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w (got %q)", ErrInvalidTimeout, raw)
	}
	return d, nil
}

// Resolve picks the config path: an explicit path wins, then $TESTWRAP_CONFIG,
// then FileName in dir. The second result reports whether the path was
// requested explicitly, in which case it must exist.
func Resolve(explicit, dir string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	return filepath.Join(dir, FileName), false
}

// Load reads configuration from disk. A missing file returns the default
// config unless required is set.
func Load(path string, required bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Default(), nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
