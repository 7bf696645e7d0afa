package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./outside.db" {
			t.Errorf("expected database path ./outside.db, got %s", config.Database.Path)
		}

		if config.Map.CenterLat != 5.6037 || config.Map.CenterLng != -0.1870 {
			t.Errorf("expected Accra as map center, got %v,%v", config.Map.CenterLat, config.Map.CenterLng)
		}

		if config.Map.DefaultZoom != 12 || config.Map.MaxZoom != 18 || config.Map.FitMaxZoom != 14 || config.Map.FocusZoom != 16 {
			t.Errorf("unexpected zoom levels: %+v", config.Map)
		}

		if config.Notifications.Dismiss().Seconds() != 4 {
			t.Errorf("expected 4s dismiss, got %v", config.Notifications.Dismiss())
		}

		if config.Session.HistoryDelay().Milliseconds() != 500 || config.Session.ReloadDelay().Milliseconds() != 1500 {
			t.Errorf("unexpected session delays: %+v", config.Session)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://venues.example.com"

[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://venues.example.com" {
			t.Errorf("expected base url from file, got %s", config.API.BaseURL)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Map.FocusZoom != 16 {
			t.Errorf("missing keys should keep defaults, got focus zoom %d", config.Map.FocusZoom)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("OUTSIDE_API_BASE_URL", "http://localhost:9000")
		t.Setenv("OUTSIDE_MAP_TILE_RATE_LIMIT", "5.5")
		t.Setenv("OUTSIDE_DATABASE_PATH", ":memory:")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.API.BaseURL != "http://localhost:9000" {
			t.Errorf("expected env base url, got %s", config.API.BaseURL)
		}
		if config.Map.TileRateLimit != 5.5 {
			t.Errorf("expected rate limit 5.5, got %v", config.Map.TileRateLimit)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("expected :memory:, got %s", config.Database.Path)
		}
		if config.Server.Port != 8000 {
			t.Errorf("unset variables should keep file values, got port %d", config.Server.Port)
		}
	})

	t.Run("ApplyEnv invalid value", func(t *testing.T) {
		t.Setenv("OUTSIDE_SERVER_PORT", "not-a-port")

		err := ApplyEnv(DefaultConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.API.BaseURL = "ftp://nowhere"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
