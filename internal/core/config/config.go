// Package config handles configuration loading and validation for forumsync.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/forumsync/internal/core/styles"
	"github.com/colonyops/forumsync/internal/data/db"
)

// TokenEnv is the environment variable holding the bot token. The token is
// never read from the config file.
const TokenEnv = "FORUMSYNC_DISCORD_TOKEN"

// Config holds the application configuration.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Sync     SyncConfig     `yaml:"sync"`
	Database DatabaseConfig `yaml:"database"`
	Theme    string         `yaml:"theme"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DiscordConfig identifies the forum threads are mirrored into.
type DiscordConfig struct {
	Token          string        `yaml:"-"`
	GuildID        string        `yaml:"guild_id"`
	ForumChannelID string        `yaml:"forum_channel_id"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// SyncConfig controls the periodic reconciliation sweep.
type SyncConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"run_on_start"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dbOpts := db.DefaultOpenOptions()
	return Config{
		Discord: DiscordConfig{
			RequestTimeout: 15 * time.Second,
		},
		Sync: SyncConfig{
			Interval:   5 * time.Minute,
			RunOnStart: true,
		},
		Database: DatabaseConfig{
			MaxOpenConns: dbOpts.MaxOpenConns,
			MaxIdleConns: dbOpts.MaxIdleConns,
			BusyTimeout:  dbOpts.BusyTimeout,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir. The bot token is taken from TokenEnv.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.Discord.Token = os.Getenv(TokenEnv)

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Discord.RequestTimeout == 0 {
		c.Discord.RequestTimeout = defaults.Discord.RequestTimeout
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = defaults.Sync.Interval
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Discord.RequestTimeout < 0 {
		return fmt.Errorf("discord.request_timeout cannot be negative")
	}

	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least 1s")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns cannot exceed max_open_conns")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if _, ok := styles.GetPalette(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q: must be one of %v", c.Theme, styles.ThemeNames())
	}

	return nil
}

// RequireDiscord reports an error when the settings needed to talk to Discord
// are missing. Commands that only touch the local store skip this check.
func (c *Config) RequireDiscord() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("%s is not set", TokenEnv)
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("discord.guild_id is not set")
	}
	return nil
}

// OpenOptions returns the database settings as db.OpenOptions.
func (c *Config) OpenOptions() db.OpenOptions {
	return db.OpenOptions{
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxIdleConns: c.Database.MaxIdleConns,
		BusyTimeout:  c.Database.BusyTimeout,
	}
}
