// Package config loads runtime configuration for a recorder session.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a recorder session.
// Values are populated from .recorder.yaml, RECORDER_* env vars, and CLI flags.
type Config struct {
	DBPath      string `mapstructure:"db_path"`
	LegacyDir   string `mapstructure:"legacy_dir"`
	JournalPath string `mapstructure:"journal_path"`
	SeedFile    string `mapstructure:"seed_file"`
	DebounceMS  int    `mapstructure:"debounce_ms"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. Empty db_path and
// legacy_dir resolve under the user's home directory.
func Load() Config {
	viper.SetDefault("db_path", "")
	viper.SetDefault("legacy_dir", "")
	viper.SetDefault("journal_path", "")
	viper.SetDefault("seed_file", "")
	viper.SetDefault("debounce_ms", 300)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir(), "recorder.db")
	}
	if cfg.LegacyDir == "" {
		cfg.LegacyDir = filepath.Join(dataDir(), "legacy")
	}
	return cfg
}

// DebounceWindow returns the configured debounce window as a duration.
func (c Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// dataDir is ~/.recorder, or .recorder under the working directory when the
// home directory cannot be determined.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recorder"
	}
	return filepath.Join(home, ".recorder")
}
