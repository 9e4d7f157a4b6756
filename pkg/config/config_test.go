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
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))
	return filename
}

func TestReadConfig(t *testing.T) {
	filename := writeConfig(t, `
server:
  port: 8081
  frontend_url: https://civiclink.example.org
  jwt_secret: from-file
  token_ttl: 24h
  rate_limit:
    requests: 50
    window: 5m
storage:
  driver: mysql
  dsn: civiclink:secret@tcp(localhost:3306)/civiclink?parseTime=true
sentry:
  environment: staging
`)

	cfg, err := ReadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "https://civiclink.example.org", cfg.Server.FrontendURL)
	assert.Equal(t, "from-file", cfg.Server.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, 50, cfg.Server.RateLimit.Requests)
	assert.Equal(t, 5*time.Minute, cfg.Server.RateLimit.Window)
	assert.Equal(t, StorageMySQL, cfg.Storage.Driver)
	assert.Equal(t, "staging", cfg.Sentry.Environment)
	assert.Equal(t, "civiclink", cfg.GoogleCloud.LogID)
}

func TestReadConfigDefaults(t *testing.T) {
	filename := writeConfig(t, `
server:
  jwt_secret: from-file
google_cloud:
  project_id: civiclink-prod
`)

	cfg, err := ReadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.FrontendURL)
	assert.Equal(t, 7*24*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, 100, cfg.Server.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimit.Window)
	assert.Equal(t, StorageFirestore, cfg.Storage.Driver)
}

func TestReadConfigEnvironment(t *testing.T) {
	t.Setenv("CIVICLINK_JWT_SECRET", "from-env")
	t.Setenv("CIVICLINK_PORT", "9090")
	t.Setenv("CIVICLINK_STORAGE_DSN", "/tmp/civiclink.db")

	filename := writeConfig(t, `
server:
  jwt_secret: from-file
storage:
  driver: sqlite
`)

	cfg, err := ReadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Server.JWTSecret)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/civiclink.db", cfg.Storage.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing secret", "storage:\n  driver: sqlite\n  dsn: ':memory:'\n"},
		{"firestore without project", "server:\n  jwt_secret: s\n"},
		{"sqlite without dsn", "server:\n  jwt_secret: s\nstorage:\n  driver: sqlite\n"},
		{"unknown driver", "server:\n  jwt_secret: s\nstorage:\n  driver: postgres\n  dsn: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, 5000, cfg.Server.Port)
}
