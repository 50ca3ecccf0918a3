// Package config loads the toolbox YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"toolbox/internal/pathman"
	"toolbox/internal/typeparse"
)

// AppName names the per-user data directory.
const AppName = "toolbox"

// Config holds all toolbox configuration.
type Config struct {
	// Where ledgers, logs and the archive live. Empty means the per-user data dir.
	DataDir string `yaml:"data_dir"`

	// Archive database path. Empty means <data_dir>/toolbox.db.
	Database string `yaml:"database"`

	Timer   TimerConfig   `yaml:"timer"`
	Sleep   SleepConfig   `yaml:"sleep"`
	Files   FilesConfig   `yaml:"files"`
	UX      UXConfig      `yaml:"ux"`
	Logging LoggingConfig `yaml:"logging"`
}

// TimerConfig configures the live timer.
type TimerConfig struct {
	RefreshInterval string `yaml:"refresh_interval"` // display redraw period
	WriteLedger     bool   `yaml:"write_ledger"`     // write ledger_<unix>.txt on quit
	Archive         bool   `yaml:"archive"`          // save the session to the database on quit
	LedgerDir       string `yaml:"ledger_dir"`       // empty means <data_dir>/ledgers
}

// SleepConfig configures the sleep command.
type SleepConfig struct {
	Precision string `yaml:"precision"`
}

// FilesConfig configures file collections.
type FilesConfig struct {
	Workers       int    `yaml:"workers"`
	WatchDebounce string `yaml:"watch_debounce"`
}

// UXConfig configures terminal output.
type UXConfig struct {
	Theme    string `yaml:"theme"` // auto, light, dark
	WordWrap int    `yaml:"word_wrap"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			RefreshInterval: "100ms",
			WriteLedger:     true,
			Archive:         true,
		},
		Sleep: SleepConfig{
			Precision: "100ms",
		},
		Files: FilesConfig{
			Workers:       8,
			WatchDebounce: "500ms",
		},
		UX: UXConfig{
			Theme:    "auto",
			WordWrap: 80,
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("TOOLBOX_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if path := os.Getenv("TOOLBOX_DB"); path != "" {
		c.Database = path
	}
	if theme := os.Getenv("TOOLBOX_THEME"); theme != "" {
		c.UX.Theme = theme
	}
	if v := os.Getenv("TOOLBOX_DEBUG"); v != "" {
		debug, err := typeparse.ParseBool(v, typeparse.BoolOptions{
			TruthyAdditional: []string{"on"},
			FalseyAdditional: []string{"off"},
			FalseOnNotFound:  true,
		})
		if err == nil {
			c.Logging.DebugMode = debug
		}
	}
}

// ResolveDataDir returns the absolute data directory.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return pathman.Provision(c.DataDir, pathman.ProvisionOptions{})
	}
	return pathman.DataDir(AppName)
}

// ResolveDatabase returns the absolute archive database path.
func (c *Config) ResolveDatabase() (string, error) {
	if c.Database != "" {
		return pathman.Provision(c.Database, pathman.ProvisionOptions{})
	}
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toolbox.db"), nil
}

// ResolveLedgerDir returns the directory ledger files are written to.
func (c *Config) ResolveLedgerDir() (string, error) {
	if c.Timer.LedgerDir != "" {
		return pathman.Provision(c.Timer.LedgerDir, pathman.ProvisionOptions{})
	}
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ledgers"), nil
}

// GetRefreshInterval returns the timer redraw period.
func (c *Config) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Timer.RefreshInterval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// GetSleepPrecision returns the sleep polling interval.
func (c *Config) GetSleepPrecision() time.Duration {
	d, err := time.ParseDuration(c.Sleep.Precision)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// GetWatchDebounce returns the directory watcher debounce window.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Files.WatchDebounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidThemes lists accepted ux.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validTheme := false
	for _, t := range ValidThemes {
		if c.UX.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ux.theme: %s (valid: %v)", c.UX.Theme, ValidThemes)
	}

	if c.Files.Workers <= 0 {
		return fmt.Errorf("files.workers must be positive, got %d", c.Files.Workers)
	}

	for name, v := range map[string]string{
		"timer.refresh_interval": c.Timer.RefreshInterval,
		"sleep.precision":        c.Sleep.Precision,
		"files.watch_debounce":   c.Files.WatchDebounce,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	return nil
}
