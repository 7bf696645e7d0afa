package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is the prefix of environment variables that override file settings, e.g. OUTSIDE_API_BASE_URL.
const EnvPrefix = "OUTSIDE"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API           APIConfig          `toml:"api"`
	Map           MapConfig          `toml:"map"`
	Notifications NotificationConfig `toml:"notifications"`
	Session       SessionConfig      `toml:"session"`
	Database      DatabaseConfig     `toml:"database"`
	Server        ServerConfig       `toml:"server"`
	Log           LogConfig          `toml:"log"`
}

// APIConfig points the client at the remote venue API.
type APIConfig struct {
	BaseURL   string `toml:"base_url" envconfig:"API_BASE_URL"`
	TimeoutMS int    `toml:"timeout_ms" envconfig:"API_TIMEOUT_MS"`
	UserAgent string `toml:"user_agent" envconfig:"API_USER_AGENT"`
}

// Timeout returns the request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// MapConfig contains the map viewport and tile layer settings.
type MapConfig struct {
	CenterLat     float64 `toml:"center_lat" envconfig:"MAP_CENTER_LAT"`
	CenterLng     float64 `toml:"center_lng" envconfig:"MAP_CENTER_LNG"`
	DefaultZoom   int     `toml:"default_zoom" envconfig:"MAP_DEFAULT_ZOOM"`
	MaxZoom       int     `toml:"max_zoom" envconfig:"MAP_MAX_ZOOM"`
	FitMaxZoom    int     `toml:"fit_max_zoom" envconfig:"MAP_FIT_MAX_ZOOM"`
	FitPadding    int     `toml:"fit_padding" envconfig:"MAP_FIT_PADDING"`
	FocusZoom     int     `toml:"focus_zoom" envconfig:"MAP_FOCUS_ZOOM"`
	Width         int     `toml:"width" envconfig:"MAP_WIDTH"`
	Height        int     `toml:"height" envconfig:"MAP_HEIGHT"`
	TileURL       string  `toml:"tile_url" envconfig:"MAP_TILE_URL"`
	Attribution   string  `toml:"attribution" envconfig:"MAP_ATTRIBUTION"`
	TileRateLimit float64 `toml:"tile_rate_limit" envconfig:"MAP_TILE_RATE_LIMIT"`
	TileRetryMS   int     `toml:"tile_retry_ms" envconfig:"MAP_TILE_RETRY_MS"`
}

// TileRetry returns the delay before the single tile retry.
func (c MapConfig) TileRetry() time.Duration {
	return time.Duration(c.TileRetryMS) * time.Millisecond
}

// NotificationConfig contains toast settings.
type NotificationConfig struct {
	DismissMS int `toml:"dismiss_ms" envconfig:"NOTIFY_DISMISS_MS"`
}

// Dismiss returns the auto-dismiss delay.
func (c NotificationConfig) Dismiss() time.Duration {
	return time.Duration(c.DismissMS) * time.Millisecond
}

// SessionConfig contains auth flow timings.
type SessionConfig struct {
	HistoryDelayMS int `toml:"history_delay_ms" envconfig:"SESSION_HISTORY_DELAY_MS"`
	ReloadDelayMS  int `toml:"reload_delay_ms" envconfig:"SESSION_RELOAD_DELAY_MS"`
	HistoryLimit   int `toml:"history_limit" envconfig:"SESSION_HISTORY_LIMIT"`
}

// HistoryDelay is the wait between a successful login and the history fetch.
func (c SessionConfig) HistoryDelay() time.Duration {
	return time.Duration(c.HistoryDelayMS) * time.Millisecond
}

// ReloadDelay is the wait before rebuilding state after a failed logout.
func (c SessionConfig) ReloadDelay() time.Duration {
	return time.Duration(c.ReloadDelayMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" envconfig:"DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" envconfig:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" envconfig:"DATABASE_MAX_IDLE_CONNS"`
}

// ServerConfig contains settings for the development fixture server.
type ServerConfig struct {
	Host string `toml:"host" envconfig:"SERVER_HOST"`
	Port int    `toml:"port" envconfig:"SERVER_PORT"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" envconfig:"LOG_LEVEL"`
	File  string `toml:"file" envconfig:"LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config values from OUTSIDE_* environment variables.
//
// Sections are processed one at a time so that unset variables leave file values untouched.
func ApplyEnv(config *Config) error {
	sections := []any{
		&config.API,
		&config.Map,
		&config.Notifications,
		&config.Session,
		&config.Database,
		&config.Server,
		&config.Log,
	}
	for _, section := range sections {
		if err := envconfig.Process(EnvPrefix, section); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Validate checks the settings the client cannot run without.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("%w: api.base_url must be an http(s) URL, got %q", ErrInvalidConfig, c.API.BaseURL)
	}
	if c.Map.MaxZoom <= 0 || c.Map.DefaultZoom > c.Map.MaxZoom {
		return fmt.Errorf("%w: map zoom levels out of range", ErrInvalidConfig)
	}
	if c.Map.TileURL == "" {
		return fmt.Errorf("%w: map.tile_url is required", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
