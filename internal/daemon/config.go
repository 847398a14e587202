// Package daemon manages the Wellspring daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig           `toml:"api"`
	Storage       StorageConfig       `toml:"storage"`
	Points        PointsConfig        `toml:"points"`
	Generator     GeneratorConfig     `toml:"generator"`
	Notifications NotificationsConfig `toml:"notifications"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
	Logging       LoggingConfig       `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls the SQLite data directory.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// PointsConfig overrides the built-in scoring rules. Zero values fall
// through to the defaults, so a partial config only changes what it names.
type PointsConfig struct {
	WeekendBonus      int64 `toml:"weekend_bonus"`
	FirstTimeBonus    int64 `toml:"first_time_bonus"`
	StreakBonusPerDay int64 `toml:"streak_bonus_per_day"`
	StreakBonusCap    int64 `toml:"streak_bonus_cap"`

	BasePoints map[string]int64 `toml:"base_points"`
}

// GeneratorConfig selects the challenge content provider. With an empty
// BaseURL the daemon uses the offline mock generator.
type GeneratorConfig struct {
	BaseURL       string `toml:"base_url"`
	APIKeyEnv     string `toml:"api_key_env"` // env var holding the key
	Model         string `toml:"model"`
	TimeoutSecond int    `toml:"timeout_seconds"`
}

// NotificationsConfig overrides the notification volume policy.
type NotificationsConfig struct {
	MaxPerDay  int    `toml:"max_per_day"`
	QuietStart string `toml:"quiet_start"`
	QuietEnd   string `toml:"quiet_end"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := wellspringHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8090,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Generator: GeneratorConfig{
			Model:         "gpt-4o-mini",
			TimeoutSecond: 10,
		},
		Notifications: NotificationsConfig{
			MaxPerDay:  3,
			QuietStart: "22:00",
			QuietEnd:   "08:00",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "wellspring.log"),
		},
	}
}

// LoadConfig reads config from ~/.wellspring/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(wellspringHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.wellspring/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(wellspringHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Rules builds the immutable scoring rules for this config: defaults
// overlaid with any non-zero overrides.
func (c Config) Rules() domain.Rules {
	rules := domain.DefaultRules()

	if c.Points.WeekendBonus > 0 {
		rules.WeekendBonus = c.Points.WeekendBonus
	}
	if c.Points.FirstTimeBonus > 0 {
		rules.FirstTimeBonus = c.Points.FirstTimeBonus
	}
	if c.Points.StreakBonusPerDay > 0 {
		rules.StreakBonusPerDay = c.Points.StreakBonusPerDay
	}
	if c.Points.StreakBonusCap > 0 {
		rules.StreakBonusCap = c.Points.StreakBonusCap
	}
	for name, points := range c.Points.BasePoints {
		t := domain.ActivityType(name)
		if _, ok := rules.BasePoints[t]; ok && points > 0 {
			rules.BasePoints[t] = points
		}
	}
	return rules
}

// Policy builds the notification policy for this config.
func (c Config) Policy() domain.NotificationPolicy {
	policy := domain.DefaultNotificationPolicy()
	if c.Notifications.MaxPerDay > 0 {
		policy.MaxPerDay = c.Notifications.MaxPerDay
	}
	if c.Notifications.QuietStart != "" {
		policy.QuietStart = c.Notifications.QuietStart
	}
	if c.Notifications.QuietEnd != "" {
		policy.QuietEnd = c.Notifications.QuietEnd
	}
	return policy
}

// wellspringHome returns the Wellspring data directory.
func wellspringHome() string {
	if env := os.Getenv("WELLSPRING_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wellspring")
}

// WellspringHome is exported for use by other packages.
func WellspringHome() string {
	return wellspringHome()
}
