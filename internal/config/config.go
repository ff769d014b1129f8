// Package config loads user preferences for proctop.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/prabalesh/proctop/internal/crash"
	"github.com/prabalesh/proctop/internal/sorter"
	"github.com/prabalesh/proctop/internal/view"
)

// ErrInvalidRows is returned for a non-positive table size.
var ErrInvalidRows = errors.New("config: rows must be positive")

// Config is the serialised form of user preferences. The refresh interval is
// fixed at one second and has no setting.
type Config struct {
	Sort         string   `yaml:"sort"`
	Rows         int      `yaml:"rows"`
	LogFile      string   `yaml:"log_file"`
	Debug        bool     `yaml:"debug"`
	CrashCommand string   `yaml:"crash_command"`
	CrashMarkers []string `yaml:"crash_markers"`
}

// Default returns the built-in preferences.
func Default() Config {
	return Config{
		Sort:         "cpu",
		Rows:         view.DefaultWindow,
		LogFile:      defaultLogFile(),
		CrashCommand: "dmesg",
		CrashMarkers: append([]string(nil), crash.DefaultMarkers...),
	}
}

// Path returns the default config location:
//
//	$XDG_CONFIG_HOME/proctop/config.yaml
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "proctop", "config.yaml"), nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "proctop", "proctop.log")
}

// Load reads path over the defaults. A missing file yields the defaults; a
// malformed or invalid one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(cfg.CrashMarkers) == 0 {
		cfg.CrashMarkers = append([]string(nil), crash.DefaultMarkers...)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be defaulted silently.
func (c Config) Validate() error {
	if _, err := sorter.ParseCriterion(c.Sort); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Rows <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRows, c.Rows)
	}
	return nil
}

// Criterion returns the configured initial sort, CPU when invalid.
func (c Config) Criterion() sorter.Criterion {
	crit, err := sorter.ParseCriterion(c.Sort)
	if err != nil {
		return sorter.ByCPU
	}
	return crit
}

// Save writes c as YAML, creating the directory if needed.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
