package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate переносит тест в пустую директорию, чтобы не подхватить чужие .env и kanban.toml
func isolate(t *testing.T) string {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		"PORT", "DATABASE_URL", "WORKER_COUNT", "MAINTENANCE_INTERVAL", "IDEMPOTENCY_TTL",
		"ALLOWED_ORIGINS", "APP_ENV", "KANBAN_CONFIG", "KANBAN_SERVER_URL",
		"KANBAN_REQUEST_TIMEOUT", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, time.Minute, cfg.MaintenanceInterval)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Development())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`
port = "4000"
database_url = "sqlite://board.db"
worker_count = 4
maintenance_interval = "30s"
allowed_origins = ["http://localhost:3000"]
env = "development"
`), 0o600))
	t.Setenv("PORT", "5000")
	t.Setenv("IDEMPOTENCY_TTL", "1h")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite://board.db", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 30*time.Second, cfg.MaintenanceInterval)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Development())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ALLOWED_ORIGINS=http://a.test, http://b.test\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ALLOWED_ORIGINS") })
	os.Unsetenv("ALLOWED_ORIGINS")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"worker count", "WORKER_COUNT", "zero"},
		{"negative worker count", "WORKER_COUNT", "-1"},
		{"interval", "MAINTENANCE_INTERVAL", "soon"},
		{"ttl", "IDEMPOTENCY_TTL", "-5m"},
		{"missing explicit file", "KANBAN_CONFIG", "nope.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadClient(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[client]
server_url = "http://board.test"
request_timeout = "3s"
`), 0o600))
	t.Setenv("KANBAN_CONFIG", path)
	t.Setenv("LOG_FILE", "tui.log")

	cfg, err := LoadClient()

	require.NoError(t, err)
	assert.Equal(t, "http://board.test", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "tui.log", cfg.LogFile)
}
