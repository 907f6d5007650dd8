// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/spf13/viper"
)

// Common errors
var (
	Err = errors.New("config error")
)

// MaxWorkers bounds engine.workers.
const MaxWorkers = 64

// Config represents the application configuration
type Config struct {
	Archive      ArchiveConfig      `mapstructure:"archive"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Crash        CrashConfig        `mapstructure:"crash"`
	Notification NotificationConfig `mapstructure:"notification"`

	// ConfigFilePath stores the path to the loaded config file (not marshaled from YAML)
	ConfigFilePath string `mapstructure:"-"`
}

// ArchiveConfig controls how diagnostic bundles are read
type ArchiveConfig struct {
	LogRoot          string `mapstructure:"log_root"`          // Directory inside the archive holding the logs
	FallbackEncoding string `mapstructure:"fallback_encoding"` // Used for members that are not valid UTF-8
}

// EngineConfig contains filter engine settings
type EngineConfig struct {
	Workers int `mapstructure:"workers"`
}

// CrashConfig contains settings for the crash report sink
type CrashConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"` // Empty means the user's Desktop
}

// NotificationConfig contains notification settings
type NotificationConfig struct {
	ShoutrrURL string `mapstructure:"shoutrrr_url"` // Shoutrrr URL format
	Enabled    bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error; defaults and LOGC_* variables apply.
func Load(configPath string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/logc")
		v.AddConfigPath("/etc/logc")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, &apperrors.ConfigurationError{ConfigPath: configFile, Err: fmt.Errorf("error reading config file: %w", err)}
		}
		// Config file not found; using defaults and env vars
	}

	v.SetEnvPrefix("LOGC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &apperrors.ConfigurationError{ConfigPath: sourceName(v.ConfigFileUsed()), Err: fmt.Errorf("error unmarshaling config: %w", err)}
	}

	cfg.ConfigFilePath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg) //nolint:errcheck // defaults always decode
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Archive defaults
	v.SetDefault("archive.log_root", "var/log")
	v.SetDefault("archive.fallback_encoding", "windows-1252")

	// Engine defaults
	v.SetDefault("engine.workers", 1)

	// Crash report defaults
	v.SetDefault("crash.enabled", true)
	v.SetDefault("crash.dir", "") // Required for AutomaticEnv to work

	// Notification defaults
	v.SetDefault("notification.shoutrrr_url", "") // Required for AutomaticEnv to work
	v.SetDefault("notification.enabled", false)
}

// Validate ensures values are within valid ranges.
func (c *Config) Validate() error {
	configSource := sourceName(c.ConfigFilePath)

	if c.Engine.Workers < 1 || c.Engine.Workers > MaxWorkers {
		return &apperrors.ConfigurationError{
			ConfigPath: configSource,
			Key:        "engine.workers",
			Err:        fmt.Errorf("%w: must be between 1 and %d, got %d", Err, MaxWorkers, c.Engine.Workers),
		}
	}

	if _, err := LookupEncoding(c.Archive.FallbackEncoding); err != nil {
		return &apperrors.ConfigurationError{ConfigPath: configSource, Key: "archive.fallback_encoding", Err: err}
	}

	if strings.HasPrefix(c.Archive.LogRoot, "/") || strings.Contains(c.Archive.LogRoot, "..") {
		return &apperrors.ConfigurationError{
			ConfigPath: configSource,
			Key:        "archive.log_root",
			Err:        fmt.Errorf("%w: must be a relative path inside the archive, got %q", Err, c.Archive.LogRoot),
		}
	}

	if c.Notification.Enabled && strings.TrimSpace(c.Notification.ShoutrrURL) == "" {
		return &apperrors.ConfigurationError{
			ConfigPath: configSource,
			Key:        "notification.shoutrrr_url",
			Err:        fmt.Errorf("%w: notification enabled but no URL configured", Err),
		}
	}

	return nil
}

// CrashDir resolves the directory crash reports are written to.
// Defaults to ~/Desktop, or the home directory when no Desktop exists.
func (c *Config) CrashDir() (string, error) {
	if c.Crash.Dir != "" {
		return c.Crash.Dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory for crash reports: %w", err)
	}

	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop, nil
	}
	return home, nil
}

func sourceName(path string) string {
	if path == "" {
		return "(defaults/environment)"
	}
	return path
}
