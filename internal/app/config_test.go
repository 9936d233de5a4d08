package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0600))
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	p := writeConfig(t, "security:\n  auth-token-key: secret\n")

	c, realpath, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, p, realpath)
	assert.Equal(t, p, c.File)

	assert.Equal(t, ":9000", c.Server.HttpPort)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.True(t, c.Database.AutoMigrate)
	assert.True(t, c.User.RegisterIsEnable)
	assert.Equal(t, "Default", c.App.DefaultFolderName)
	assert.Equal(t, "0 3 * * *", c.Task.FTSOptimizeCron)
	assert.Equal(t, 60*time.Second, c.GetContextTimeout())

	wq := c.GetWriteQueueConfig()
	assert.Equal(t, 100, wq.QueueCapacity)
	assert.Equal(t, 30*time.Second, wq.WriteTimeout)
	assert.Equal(t, 10*time.Minute, wq.IdleTimeout)
}

func TestLoadConfig_Overrides(t *testing.T) {
	p := writeConfig(t, `
server:
  run-mode: debug
  http-port: ":8080"
database:
  type: postgres
  host: localhost:5432
  name: notes
  conn-max-lifetime: 1h
app:
  write-queue-capacity: 5
  write-queue-timeout: 2s
  default-context-timeout: 5
security:
  auth-token-key: secret
user:
  register-is-enable: false
task:
  fts-optimize-cron: "@hourly"
`)

	c, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.HttpPort)
	assert.Equal(t, 5*time.Second, c.GetContextTimeout())
	assert.Equal(t, "@hourly", c.Task.FTSOptimizeCron)
	assert.False(t, c.User.RegisterIsEnable)

	wq := c.GetWriteQueueConfig()
	assert.Equal(t, 5, wq.QueueCapacity)
	assert.Equal(t, 2*time.Second, wq.WriteTimeout)

	db := c.GetDatabaseConfig()
	assert.Equal(t, "postgres", db.Type)
	assert.Equal(t, time.Hour, db.ConnMaxLifetime)
	assert.True(t, db.Debug)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, _, err := LoadConfig(writeConfig(t, "database:\n  type: oracle\nsecurity:\n  auth-token-key: s\n"))
	assert.ErrorContains(t, err, "unsupported database type")

	_, _, err = LoadConfig(writeConfig(t, "security:\n  auth-token-key: \"\"\n"))
	assert.ErrorContains(t, err, "auth-token-key")

	_, _, err = LoadConfig(writeConfig(t, "server: [\n"))
	assert.ErrorContains(t, err, "parse config file failed")

	_, _, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file failed")
}

func TestSaveRoundTrip(t *testing.T) {
	p := writeConfig(t, "security:\n  auth-token-key: secret\n")
	c, _, err := LoadConfig(p)
	require.NoError(t, err)

	c.App.DefaultFolderName = "Inbox"
	require.NoError(t, c.Save())

	again, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "Inbox", again.App.DefaultFolderName)
	assert.Equal(t, "secret", again.Security.AuthTokenKey)
}
