package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./moodtune.db" {
			t.Errorf("expected database path ./moodtune.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.API.BaseURL != "http://localhost:8000" {
			t.Errorf("expected api base URL http://localhost:8000, got %s", config.API.BaseURL)
		}
		if config.Language() != "en" {
			t.Errorf("expected default language en, got %s", config.Language())
		}
		if config.Player.FallbackDuration != 30 {
			t.Errorf("expected fallback duration 30, got %v", config.Player.FallbackDuration)
		}
		if config.Credentials.Deezer.Configured() {
			t.Error("placeholder credentials should not count as configured")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

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
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[api]
base_url = "https://moods.example.com"

[preferences]
language = "es"

[credentials.deezer]
app_id = "123456"
secret_key = "s3cret"
redirect_uri = "http://localhost:3000/callback"

[server]
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://moods.example.com" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}
		if config.Language() != "es" {
			t.Errorf("expected language es, got %s", config.Language())
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Player.Volume != 0.7 {
			t.Errorf("unset sections should keep defaults, got volume %v", config.Player.Volume)
		}
		if !config.Credentials.Deezer.Configured() {
			t.Error("expected deezer credentials to be configured")
		}
		if got := config.Credentials.Deezer.Map()["app_id"]; got != "123456" {
			t.Errorf("expected app_id 123456 in credential map, got %s", got)
		}
	})

	t.Run("LoadConfig invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("SaveConfig round trips session", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := config.Credentials.Deezer.Update(&oauth2.Token{AccessToken: "tok", Expiry: expiry}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		config.Preferences.Language = "es"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		token := loaded.Credentials.Deezer.Token()
		if token == nil || token.AccessToken != "tok" {
			t.Fatalf("expected stored token, got %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
		if loaded.Language() != "es" {
			t.Errorf("expected persisted language es, got %s", loaded.Language())
		}
	})

	t.Run("DeezerConfig Update rejects empty token", func(t *testing.T) {
		var d DeezerConfig
		if err := d.Update(&oauth2.Token{}); err == nil {
			t.Error("expected error for empty token")
		}
		if d.Token() != nil {
			t.Error("expected no token to be stored")
		}
	})

	t.Run("DeezerConfig Clear", func(t *testing.T) {
		d := DeezerConfig{AccessToken: "tok", Expiry: time.Now()}
		d.Clear()
		if d.Token() != nil || !d.Expiry.IsZero() {
			t.Error("expected session to be cleared")
		}
	})
}
