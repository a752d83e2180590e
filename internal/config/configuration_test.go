package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "casework.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  concurrency: 64
  request:
    size_limit: 4
  log:
    format: json
    level: debug
    output: stdout
  clean:
    schedule: "0 3 * * *"
    retention: 72h
database:
  driver: sqlite
  sqlite_path: casework.db
`)
	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.Concurrency)
	assert.Equal(t, 4, cfg.Server.RequestConfig.SizeLimit)
	assert.Equal(t, "json", cfg.Server.LogConfig.Format)
	assert.Equal(t, "debug", cfg.Server.LogConfig.Level)
	assert.Equal(t, "0 3 * * *", cfg.Server.CleanConfig.Schedule)
	assert.Equal(t, 72*time.Hour, cfg.Server.CleanConfig.Retention)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "casework.db", cfg.Database.SqlitePath)
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	path := writeConfig(t, "server: {}\n")
	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.RequestConfig.SizeLimit)
	assert.Equal(t, "@daily", cfg.Server.CleanConfig.Schedule)
	assert.Equal(t, 30*24*time.Hour, cfg.Server.CleanConfig.Retention)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
