package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Restaurant struct {
		ID          int64  `yaml:"id"`
		Name        string `yaml:"name"`
		FloorplanID int64  `yaml:"floorplan_id"`
		Timezone    string `yaml:"timezone"`
	} `yaml:"restaurant"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Reminders struct {
		Enabled              bool   `yaml:"enabled"`
		BotToken             string `yaml:"bot_token"`
		ChatID               int64  `yaml:"chat_id"`
		LeadMinutes          int    `yaml:"lead_minutes"`
		CheckIntervalSeconds int    `yaml:"check_interval_seconds"`
	} `yaml:"reminders"`

	Sheets struct {
		Enabled             bool   `yaml:"enabled"`
		CredentialsFile     string `yaml:"credentials_file"`
		SpreadsheetID       string `yaml:"spreadsheet_id"`
		SyncIntervalMinutes int    `yaml:"sync_interval_minutes"`
	} `yaml:"sheets"`

	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig controls periodic snapshots of the sqlite file.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	StoragePath   string `yaml:"storage_path"`
	IntervalHours int    `yaml:"interval_hours"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load reads the YAML config, expanding ${ENV_VAR} placeholders.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/seatwise.db"
	}
	if c.Restaurant.ID == 0 {
		c.Restaurant.ID = 1
	}
	if c.Restaurant.FloorplanID == 0 {
		c.Restaurant.FloorplanID = 1
	}
	if c.Restaurant.Timezone == "" {
		c.Restaurant.Timezone = "UTC"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Reminders.LeadMinutes <= 0 {
		c.Reminders.LeadMinutes = 60
	}
	if c.Reminders.CheckIntervalSeconds <= 0 {
		c.Reminders.CheckIntervalSeconds = 60
	}
	if c.Sheets.SyncIntervalMinutes <= 0 {
		c.Sheets.SyncIntervalMinutes = 15
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.RetentionDays <= 0 {
		c.Backup.RetentionDays = 14
	}
}

// Location resolves the restaurant's timezone. All reservation times are
// compared in this location; the ambient UTC "now" is converted at the
// boundary.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Restaurant.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid restaurant timezone %q: %w", c.Restaurant.Timezone, err)
	}
	return loc, nil
}

// CacheTTL returns the redis cache TTL, zero when caching is disabled.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// ReminderCheckInterval returns the reminder scheduler tick interval.
func (c *Config) ReminderCheckInterval() time.Duration {
	return time.Duration(c.Reminders.CheckIntervalSeconds) * time.Second
}

// SheetsSyncInterval returns how often the sheet mirror resyncs.
func (c *Config) SheetsSyncInterval() time.Duration {
	return time.Duration(c.Sheets.SyncIntervalMinutes) * time.Minute
}

// BackupInterval returns how often database snapshots are taken.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
