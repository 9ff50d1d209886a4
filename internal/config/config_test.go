package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{Driver: DriverSQLite, DataPath: "/data"},
		Import: ImportConfig{MaxBytes: 1 << 20, RatePerMinute: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }},
		{"uppercase environment", func(c *Config) { c.App.Environment = "DEVELOPMENT" }},
		{"unknown log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"empty data path", func(c *Config) { c.Store.DataPath = "" }},
		{"zero upload limit", func(c *Config) { c.Import.MaxBytes = 0 }},
		{"zero import rate", func(c *Config) { c.Import.RatePerMinute = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nSERVER_PORT=9000\nSTORE_DRIVER=memory\n"), 0o600))

	t.Setenv("SERVER_PORT", "9100")
	unsetEnv(t, "LOG_LEVEL", "STORE_DRIVER")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-env-file", envFile, "-data-path", dir, "-store", "sqlite"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, ".env fills unset variables")
	assert.Equal(t, "9100", cfg.Server.Port, "environment beats .env")
	assert.Equal(t, DriverSQLite, cfg.Store.Driver, "flag beats .env")
	assert.Equal(t, dir, cfg.Store.DataPath)
	assert.Equal(t, filepath.Join(dir, "bookshelf.db"), cfg.Store.DatabasePath())
}

// unsetEnv removes keys for the duration of the test. godotenv treats a key
// that is present but empty as already set.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "ENV", "LOG_LEVEL", "STORE_DRIVER", "SERVER_PORT", "ACCESS_TOKEN_DURATION", "IMPORT_MAX_BYTES", "CORS_ORIGINS")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-env-file", filepath.Join(t.TempDir(), "missing.env"), "-data-path", t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-env-file", filepath.Join(t.TempDir(), "missing.env"), "-data-path", t.TempDir()})
	assert.ErrorContains(t, err, "SERVER_READ_TIMEOUT")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/shelf", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shelf"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)
}
