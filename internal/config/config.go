// Package config loads qbank settings from a TOML file and QBANK_ env vars.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/qbank/internal/store"
)

// Config holds application configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Exam      ExamConfig      `mapstructure:"exam"`
}

// DataConfig locates the document store.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// SnapshotsConfig controls the auto-snapshot scheduler.
type SnapshotsConfig struct {
	Auto     bool          `mapstructure:"auto"`
	Interval time.Duration `mapstructure:"interval"`
	Keep     int           `mapstructure:"keep"`
}

// ExamConfig controls exam sessions.
type ExamConfig struct {
	Size int `mapstructure:"size"`
}

// Path returns the config file location:
// 1. QBANK_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/qbank/config.toml
// 3. ~/.config/qbank/config.toml
func Path() string {
	if p := os.Getenv("QBANK_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "qbank", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".qbank", "config.toml")
	}
	return filepath.Join(home, ".config", "qbank", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// QBANK_, with dots replaced by underscores (QBANK_SNAPSHOTS_INTERVAL). A
// missing config file is not an error.
func Load() (Config, error) {
	v := viper.New()

	dataDir, err := store.DefaultDataDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	v.SetDefault("data.dir", dataDir)
	v.SetDefault("snapshots.auto", true)
	v.SetDefault("snapshots.interval", 10*time.Minute)
	v.SetDefault("snapshots.keep", 50)
	v.SetDefault("exam.size", 25)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("QBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Exam.Size <= 0 {
		c.Exam.Size = 25
	}
	return c, nil
}

// Save writes cfg to Path(), creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("data.dir", cfg.Data.Dir)
	v.Set("snapshots.auto", cfg.Snapshots.Auto)
	v.Set("snapshots.interval", cfg.Snapshots.Interval.String())
	v.Set("snapshots.keep", cfg.Snapshots.Keep)
	v.Set("exam.size", cfg.Exam.Size)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveAutoSnapshots sets snapshots.auto in the config file and leaves every
// other key as the file has it. Values from flags or env are never written.
func SaveAutoSnapshots(enabled bool) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	v.Set("snapshots.auto", enabled)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
