package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "STORE_BACKEND", "SERVER_PORT",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	cfg, err := Load([]string{noEnvFile(t), "-data-path", dataDir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, dataDir, cfg.Store.DataPath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, filepath.Join(dataDir, "badger"), cfg.Store.BadgerPath())
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`
# comment
SERVER_PORT=7000
LOG_LEVEL="debug"
STORE_BACKEND=sqlite
`), 0o600))

	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir, "-log-level", "warn"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port, "env beats .env file")
	assert.Equal(t, "warn", cfg.Logger.Level, "flag beats .env file")
	assert.Equal(t, BackendSQLite, cfg.Store.Backend, ".env file beats default")
}

func TestLoad_CORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load([]string{noEnvFile(t), "-data-path", t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad backend", []string{"-store", "postgres"}},
		{"bad env", []string{"-env", "test"}},
		{"bad level", []string{"-log-level", "loud"}},
		{"bad duration", []string{"-read-timeout", "soon"}},
		{"negative duration", []string{"-idle-timeout", "-1s"}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			args := append([]string{noEnvFile(t), "-data-path", t.TempDir()}, tt.args...)
			_, err := Load(args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NOT A PAIR\n"), 0o600))

	_, err := Load([]string{"-env-file", envFile, "-data-path", t.TempDir()})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/fritter", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "fritter"), got)

	got, err = ExpandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = ExpandPath("/a/b/../c", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/c", got)
}
