package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"toolbox/internal/config"
	"toolbox/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg      *config.Config
	logger   *zap.Logger
	cmdStart time.Time
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "toolbox",
	Short: "toolbox - everyday command-line utilities",
	Long: `toolbox bundles small utilities behind one binary:

  timer     live pausable stopwatch with an archived ledger
  bytes     storage unit conversion
  humanize  numbers as commified text, words or counted nouns
  roman     roman numeral conversion
  version   read and bump VERSION files
  path      prepare paths and gather files
  files     summarize a directory by extension
  proc      find and signal processes by name
  sleep     interruptible countdown`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := loadConfig(); err != nil {
			return err
		}
		logDispatch(cmd, args)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCompletion(cmd)
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// loadConfig reads the config file, applies flag overrides and starts the
// file logger under the data directory.
func loadConfig() error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	_, statErr := os.Stat(path)
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if dataDir != "" {
		c.DataDir = dataDir
	}
	if verbose {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	dir, err := c.ResolveDataDir()
	if err != nil {
		return err
	}
	if err := logging.Initialize(dir, c.Logging.Settings()); err != nil {
		return err
	}

	cfg = c
	logger.Debug("Configuration loaded",
		zap.String("config", path),
		zap.String("data_dir", dir))
	if logging.IsDebugMode() {
		logger.Debug("File logging enabled", zap.String("logs_dir", logging.LogsDir()))
	}
	logging.Boot("config %s, data dir %s", path, dir)
	if errors.Is(statErr, fs.ErrNotExist) {
		logging.BootWarn("config %s not found, using defaults", path)
	}
	return nil
}

// logDispatch records the command about to run in the cli log.
func logDispatch(cmd *cobra.Command, args []string) {
	cmdStart = time.Now()
	logging.CLI("dispatch %s %q", cmd.CommandPath(), args)
}

func logCompletion(cmd *cobra.Command) {
	logging.Get(logging.CategoryCLI).StructuredLog("info", "command finished", map[string]interface{}{
		"command":     cmd.CommandPath(),
		"duration_ms": time.Since(cmdStart).Milliseconds(),
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config and TOOLBOX_DATA_DIR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
