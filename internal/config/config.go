// Package config handles XDG configuration directory, file paths and
// per-user settings.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"smartodo/internal/view"
)

const (
	// AppName is the application directory name.
	AppName = "smartodo"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SettingsFile holds project id and behavior settings.
	SettingsFile = "settings.json"

	// SnapshotDirName is the subdirectory for durable task snapshots.
	SnapshotDirName = "snapshots"
)

// Settings is the persisted part of the configuration.
type Settings struct {
	// ProjectID is the Firestore project backing the remote store.
	ProjectID string `json:"projectId"`

	// UserID identifies whose task collections to use.
	UserID string `json:"userId"`

	// PushReorders propagates manual reorders to the remote store so they
	// survive the next snapshot. Off by default: reorders are ephemeral and
	// the next remote push overwrites them.
	PushReorders bool `json:"pushReorders"`

	// PageSize is the number of tasks per page in derived views.
	PageSize int `json:"pageSize"`

	// OpenAIModel overrides the suggestion model.
	OpenAIModel string `json:"openaiModel,omitempty"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings

	logger *slog.Logger
}

// New creates a Config with the default or specified config directory and
// loads settings.json if present. A missing settings file yields defaults.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir: dir,
		Settings: Settings{
			PageSize: view.DefaultPageSize,
		},
	}

	data, err := os.ReadFile(cfg.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &cfg.Settings); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = view.DefaultPageSize
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SnapshotDir returns the directory for durable task snapshots.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.Dir, SnapshotDirName)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// SaveSettings writes settings.json with mode 0600.
func (c *Config) SaveSettings() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.Settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SettingsPath(), data, 0600)
}

// Logger returns a stderr logger at the level implied by Debug. The logger
// is created once and reused.
func (c *Config) Logger() *slog.Logger {
	if c.logger == nil {
		level := slog.LevelWarn
		if c.Debug {
			level = slog.LevelDebug
		}
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return c.logger
}
