package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "var/log", cfg.Archive.LogRoot)
	assert.Equal(t, "windows-1252", cfg.Archive.FallbackEncoding)
	assert.Equal(t, 1, cfg.Engine.Workers)
	assert.True(t, cfg.Crash.Enabled)
	assert.Empty(t, cfg.Crash.Dir)
	assert.False(t, cfg.Notification.Enabled)
}

func TestLoad_EnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOGC_ENGINE_WORKERS", "4")
	t.Setenv("LOGC_ARCHIVE_LOG_ROOT", "logs")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, "logs", cfg.Archive.LogRoot)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `archive:
  log_root: var/tmp
  fallback_encoding: latin1
engine:
  workers: 8
crash:
  enabled: false
  dir: /tmp/crash
notification:
  enabled: true
  shoutrrr_url: generic://test
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "var/tmp", cfg.Archive.LogRoot)
	assert.Equal(t, "latin1", cfg.Archive.FallbackEncoding)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.False(t, cfg.Crash.Enabled)
	assert.Equal(t, "/tmp/crash", cfg.Crash.Dir)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, "generic://test", cfg.Notification.ShoutrrURL)
	assert.Equal(t, configPath, cfg.ConfigFilePath)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConfiguration, apperrors.KindOf(err))
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `engine:
  workers: 2
  invalid yaml content [[[
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Archive: ArchiveConfig{LogRoot: "var/log", FallbackEncoding: "windows-1252"},
			Engine:  EngineConfig{Workers: 1},
			Crash:   CrashConfig{Enabled: true},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.Engine.Workers = 0 }, wantKey: "engine.workers"},
		{name: "too many workers", mutate: func(c *Config) { c.Engine.Workers = MaxWorkers + 1 }, wantKey: "engine.workers"},
		{name: "unknown encoding", mutate: func(c *Config) { c.Archive.FallbackEncoding = "klingon" }, wantKey: "archive.fallback_encoding"},
		{name: "absolute log root", mutate: func(c *Config) { c.Archive.LogRoot = "/var/log" }, wantKey: "archive.log_root"},
		{name: "escaping log root", mutate: func(c *Config) { c.Archive.LogRoot = "../etc" }, wantKey: "archive.log_root"},
		{
			name:    "notification without URL",
			mutate:  func(c *Config) { c.Notification.Enabled = true },
			wantKey: "notification.shoutrrr_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *apperrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
			assert.ErrorIs(t, err, Err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Engine.Workers)
}

func TestCrashDir(t *testing.T) {
	t.Run("explicit directory", func(t *testing.T) {
		cfg := &Config{Crash: CrashConfig{Dir: "/var/crash"}}
		dir, err := cfg.CrashDir()
		require.NoError(t, err)
		assert.Equal(t, "/var/crash", dir)
	})

	t.Run("desktop when present", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		require.NoError(t, os.Mkdir(filepath.Join(home, "Desktop"), 0o750))

		dir, err := (&Config{}).CrashDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Desktop"), dir)
	})

	t.Run("home without desktop", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		dir, err := (&Config{}).CrashDir()
		require.NoError(t, err)
		assert.Equal(t, home, dir)
	})
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "windows-1252", "latin1", "utf-8"} {
		enc, err := LookupEncoding(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}

	_, err := LookupEncoding("not-an-encoding")
	assert.ErrorIs(t, err, Err)
}

func TestErr_ErrorVariable(t *testing.T) {
	assert.EqualError(t, Err, "config error")
}
