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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: `+filepath.Join(t.TempDir(), "seatwise.db")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1), cfg.Restaurant.ID)
	assert.Equal(t, int64(1), cfg.Restaurant.FloorplanID)
	assert.Equal(t, "UTC", cfg.Restaurant.Timezone)
	assert.Equal(t, 8090, cfg.Monitoring.HealthCheckPort)
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 60, cfg.Reminders.LeadMinutes)
	assert.Equal(t, time.Minute, cfg.ReminderCheckInterval())
	assert.Equal(t, 15*time.Minute, cfg.SheetsSyncInterval())
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval())
	assert.Equal(t, 14, cfg.Backup.RetentionDays)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SEATWISE_TEST_API_KEY", "sekret")

	path := writeConfig(t, `
server:
  api_key: "${SEATWISE_TEST_API_KEY}"
database:
  path: `+filepath.Join(t.TempDir(), "seatwise.db")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Server.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	path := writeConfig(t, `
database:
  path: `+filepath.Join(t.TempDir(), "seatwise.db")+`
restaurant:
  timezone: "Europe/Moscow"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())

	cfg.Restaurant.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	cfg := &Config{}
	cfg.Redis.CacheTTLSeconds = 30
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
}
