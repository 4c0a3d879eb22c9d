package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Preferences PreferencesConfig `toml:"preferences"`
	Credentials CredentialsConfig `toml:"credentials"`
	Deezer      DeezerAPIConfig   `toml:"deezer"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Player      PlayerConfig      `toml:"player"`
	Cache       CacheConfig       `toml:"cache"`
	Speech      SpeechConfig      `toml:"speech"`
}

// APIConfig points at the discovery backend.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout for the discovery backend.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// PreferencesConfig holds the persisted user preferences.
type PreferencesConfig struct {
	Language string `toml:"language"`
	Theme    string `toml:"theme"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Deezer DeezerConfig `toml:"deezer"`
}

// DeezerConfig contains Deezer application credentials and the stored session token.
type DeezerConfig struct {
	AppID       string    `toml:"app_id"`
	SecretKey   string    `toml:"secret_key"`
	RedirectURI string    `toml:"redirect_uri"`
	AccessToken string    `toml:"access_token"`
	Expiry      time.Time `toml:"expiry,omitempty"`
}

// Map returns the credentials in the form accepted by services.NewDeezerService.
func (d DeezerConfig) Map() map[string]string {
	return map[string]string{
		"app_id":       d.AppID,
		"secret_key":   d.SecretKey,
		"redirect_uri": d.RedirectURI,
	}
}

// Configured reports whether real application credentials are present.
func (d DeezerConfig) Configured() bool {
	if d.AppID == "" || d.SecretKey == "" {
		return false
	}
	return d.AppID != "your_deezer_app_id" && d.SecretKey != "your_deezer_secret_key"
}

// Token returns the stored session as an [oauth2.Token], or nil when no session is stored.
func (d DeezerConfig) Token() *oauth2.Token {
	if d.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: d.AccessToken, TokenType: "Bearer", Expiry: d.Expiry}
}

// Update stores the token obtained from an OAuth flow.
func (d *DeezerConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	d.AccessToken = token.AccessToken
	d.Expiry = token.Expiry
	return nil
}

// Clear removes the stored session.
func (d *DeezerConfig) Clear() {
	d.AccessToken = ""
	d.Expiry = time.Time{}
}

// DeezerAPIConfig tunes calls against the Deezer API.
type DeezerAPIConfig struct {
	RateLimit float64 `toml:"rate_limit"` // requests per second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlayerConfig contains playback defaults.
type PlayerConfig struct {
	Volume           float64 `toml:"volume"`
	FallbackDuration float64 `toml:"fallback_duration"`
	RestartThreshold float64 `toml:"restart_threshold"`
}

// CacheConfig controls the local discovery cache.
type CacheConfig struct {
	Enabled    bool    `toml:"enabled"`
	Similarity float64 `toml:"similarity"`
}

// SpeechConfig names the external speech recognizer, if any.
//
// The literal "{lang}" inside Args is replaced by the recognizer locale (en-US, es-ES).
type SpeechConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Language implements the read-only preferences accessor used by the TUI.
func (c *Config) Language() string {
	if c.Preferences.Language == "" {
		return "en"
	}
	return c.Preferences.Language
}

// Theme implements the read-only preferences accessor used by the TUI.
func (c *Config) Theme() string {
	if c.Preferences.Theme == "" {
		return "dark"
	}
	return c.Preferences.Theme
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
//
// The file is written with 0600 permissions since it may carry a session token.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
