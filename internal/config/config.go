// Package config loads the server configuration from travelrec.yaml, the
// process environment and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "travelrec.yaml"

	// DefaultJWTSecret only exists so a fresh checkout boots; Validate warns about it.
	DefaultJWTSecret = "change-me-travel-recommendation-secret"
)

var (
	ValidDrivers   = []string{"sqlite3", "sqlite", "pgx"}
	ValidProviders = []string{"openai", "groq", "gemini"}
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Frontend  FrontendConfig  `yaml:"frontend"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	Dev             bool   `yaml:"dev"`
	ReadTimeout     string `yaml:"read_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type FrontendConfig struct {
	// Dir holds the Vue sources (src/Pages, src/Layouts).
	Dir string `yaml:"dir"`
	// DistDir is Vite's output directory, read from disk in dev mode.
	DistDir      string `yaml:"dist_dir"`
	AssetVersion string `yaml:"asset_version"`
	Title        string `yaml:"title"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3, sqlite, pgx
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLSeconds int64  `yaml:"token_ttl_seconds"`
	CookieName      string `yaml:"cookie_name"`
	CookieSecure    bool   `yaml:"cookie_secure"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type LLMConfig struct {
	Provider string         `yaml:"provider"` // openai, groq, gemini
	Timeout  string         `yaml:"timeout"`
	OpenAI   ProviderConfig `yaml:"openai"`
	Groq     ProviderConfig `yaml:"groq"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

type GeocodingConfig struct {
	MapboxAPIKey string `yaml:"mapbox_api_key"`
	BaseURL      string `yaml:"base_url"`
	CacheTTL     string `yaml:"cache_ttl"`
	Concurrency  int    `yaml:"concurrency"`
}

type UploadsConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "30s",
			ShutdownTimeout: "10s",
		},
		Frontend: FrontendConfig{
			Dir:     "frontend",
			DistDir: "frontend/dist",
			Title:   "Travel Recommendation",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "data/travelrec.db",
		},
		Auth: AuthConfig{
			JWTSecret:       DefaultJWTSecret,
			TokenTTLSeconds: 2592000,
			CookieName:      "AUTH_TOKEN",
			CleanupSchedule: "@every 1h",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Timeout:  "120s",
			OpenAI: ProviderConfig{
				Model:   "gpt-4o-mini",
				BaseURL: "https://api.openai.com/v1/chat/completions",
			},
			Groq: ProviderConfig{
				Model:   "llama-3.3-70b-versatile",
				BaseURL: "https://api.groq.com/openai/v1/chat/completions",
			},
			Gemini: ProviderConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Geocoding: GeocodingConfig{
			BaseURL:     "https://api.mapbox.com/geocoding/v5/mapbox.places",
			CacheTTL:    "24h",
			Concurrency: 4,
		},
		Uploads: UploadsConfig{
			MaxBytes: 10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// A .env file next to the working directory is loaded first; it never
// overrides variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.resolveSecrets(defaultKeyring)

	return cfg, nil
}

func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Server.Addr, "TRAVELREC_ADDR")
	if v := os.Getenv("TRAVELREC_DEV"); v != "" {
		c.Server.Dev = v == "1" || v == "true"
	}
	setString(&c.Logging.Level, "TRAVELREC_LOG_LEVEL")
	setString(&c.Logging.Format, "TRAVELREC_LOG_FORMAT")
	setString(&c.Frontend.DistDir, "TRAVELREC_DIST_DIR")
	setString(&c.Frontend.AssetVersion, "TRAVELREC_ASSET_VERSION")

	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("JWT_EXPIRATION_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Auth.TokenTTLSeconds = n
		}
	}
	setString(&c.Auth.CookieName, "AUTH_COOKIE_NAME")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAI.Model, "OPENAI_MODEL")
	setString(&c.LLM.Groq.APIKey, "GROQ_API_KEY")
	setString(&c.LLM.Groq.Model, "GROQ_MODEL")
	setString(&c.LLM.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.LLM.Gemini.Model, "GEMINI_MODEL")

	setString(&c.Geocoding.MapboxAPIKey, "MAPBOX_API_KEY")
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(ValidDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver: %s (valid: %v)", c.Database.Driver, ValidDrivers)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !slices.Contains(ValidProviders, c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		return fmt.Errorf("auth token_ttl_seconds must be positive, got %d", c.Auth.TokenTTLSeconds)
	}
	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads max_bytes must be positive, got %d", c.Uploads.MaxBytes)
	}
	if c.Geocoding.Concurrency <= 0 {
		return fmt.Errorf("geocoding concurrency must be positive, got %d", c.Geocoding.Concurrency)
	}
	for name, raw := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"llm.timeout":             c.LLM.Timeout,
		"geocoding.cache_ttl":     c.Geocoding.CacheTTL,
	} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %q", name, raw)
		}
	}
	return nil
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var out []string
	if c.Auth.JWTSecret == DefaultJWTSecret {
		out = append(out, "auth.jwt_secret uses the built-in default; set JWT_SECRET or run `travelrec secret set jwt_secret`")
	}
	if c.Provider().APIKey == "" {
		out = append(out, fmt.Sprintf("no API key configured for LLM provider %s", c.LLM.Provider))
	}
	if c.Geocoding.MapboxAPIKey == "" {
		out = append(out, "geocoding.mapbox_api_key is empty; /api/geocode will answer 500")
	}
	return out
}

// Provider returns the settings of the selected LLM provider.
func (c *Config) Provider() ProviderConfig {
	switch c.LLM.Provider {
	case "groq":
		return c.LLM.Groq
	case "gemini":
		return c.LLM.Gemini
	}
	return c.LLM.OpenAI
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) LLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 120*time.Second)
}

func (c *Config) GeocodeCacheTTL() time.Duration {
	return parseDuration(c.Geocoding.CacheTTL, 24*time.Hour)
}

func parseDuration(raw string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
