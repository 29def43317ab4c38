package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds user settings. All keys are optional; the zero config watches
// every player, stores the database in the XDG data dir and posts
// acknowledgement notifications.
type Config struct {
	// Player restricts watching to MPRIS bus names containing this
	// substring (e.g. "tidal-hifi"). Empty watches every player.
	Player string `koanf:"player"`

	Database      DatabaseConfig      `koanf:"database"`
	Notifications NotificationsConfig `koanf:"notifications"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `koanf:"path"` // override for the history database file
}

// NotificationsConfig holds acknowledgement notification settings.
type NotificationsConfig struct {
	Enabled   *bool `koanf:"enabled"`    // default: true
	TimeoutMs int32 `koanf:"timeout_ms"` // default: -1 (server default)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/streamlog/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "streamlog", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// NotificationsEnabled returns the notifications.enabled setting with its
// default applied.
func (c *Config) NotificationsEnabled() bool {
	if c.Notifications.Enabled == nil {
		return true
	}
	return *c.Notifications.Enabled
}

// NotificationTimeout returns the acknowledgement expiry in ms, defaulting
// to the notification server's own timeout.
func (c *Config) NotificationTimeout() int32 {
	if c.Notifications.TimeoutMs == 0 {
		return -1
	}
	return c.Notifications.TimeoutMs
}
