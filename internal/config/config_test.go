package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"TRAVELREC_ADDR", "TRAVELREC_DEV", "TRAVELREC_LOG_LEVEL", "DATABASE_DRIVER", "DATABASE_URL",
		"JWT_SECRET", "JWT_EXPIRATION_SECONDS", "LLM_PROVIDER", "OPENAI_API_KEY", "GROQ_API_KEY",
		"GEMINI_API_KEY", "MAPBOX_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Auth.CookieName != "AUTH_TOKEN" {
		t.Errorf("expected CookieName=AUTH_TOKEN, got %s", cfg.Auth.CookieName)
	}
	if cfg.Auth.TokenTTLSeconds != 2592000 {
		t.Errorf("expected TokenTTLSeconds=2592000, got %d", cfg.Auth.TokenTTLSeconds)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", cfg.LLM.Provider)
	}
	if cfg.Uploads.MaxBytes != 10*1024*1024 {
		t.Errorf("expected 10MB upload limit, got %d", cfg.Uploads.MaxBytes)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestConfigSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "conf", "travelrec.yaml")

	cfg := DefaultConfig()
	cfg.Database.Driver = "pgx"
	cfg.Database.DSN = "postgres://localhost/travel"
	cfg.LLM.Provider = "groq"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pgx", loaded.Database.Driver)
	assert.Equal(t, "postgres://localhost/travel", loaded.Database.DSN)
	assert.Equal(t, "llama-3.3-70b-versatile", loaded.Provider().Model)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "travelrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAVELREC_ADDR", ":9999")
	t.Setenv("TRAVELREC_DEV", "1")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRATION_SECONDS", "60")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.Server.Dev)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, int64(60), cfg.Auth.TokenTTLSeconds)
	assert.Equal(t, "g-key", cfg.Provider().APIKey)
}

type mapKeyring map[string]string

func (m mapKeyring) Get(service, user string) (string, error) {
	v, ok := m[service+"/"+user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m mapKeyring) Set(service, user, password string) error {
	m[service+"/"+user] = password
	return nil
}

func TestResolveSecretsKeyringWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.OpenAI.APIKey = "from-env"
	cfg.Geocoding.MapboxAPIKey = "from-file"

	cfg.resolveSecrets(mapKeyring{"travelrec/openai_api_key": "from-keyring"})

	assert.Equal(t, "from-keyring", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "from-file", cfg.Geocoding.MapboxAPIKey)
}

func TestStoreSecret(t *testing.T) {
	require.NoError(t, StoreSecret("mapbox_api_key", "pk.test"))

	got, err := keyring.Get(keyringService, "mapbox_api_key")
	require.NoError(t, err)
	assert.Equal(t, "pk.test", got)

	assert.Error(t, StoreSecret("nope", "x"))
	assert.Error(t, StoreSecret("jwt_secret", ""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "anthropic" }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTLSeconds = 0 }},
		{"negative upload limit", func(c *Config) { c.Uploads.MaxBytes = -1 }},
		{"bad timeout", func(c *Config) { c.LLM.Timeout = "soon" }},
		{"zero concurrency", func(c *Config) { c.Geocoding.Concurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Len(t, cfg.Warnings(), 3)

	cfg.Auth.JWTSecret = "real"
	cfg.LLM.OpenAI.APIKey = "sk"
	cfg.Geocoding.MapboxAPIKey = "pk"
	assert.Empty(t, cfg.Warnings())
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ReadTimeout = "garbage"
	assert.Equal(t, "30s", cfg.ReadTimeout().String())
	assert.Equal(t, "720h0m0s", cfg.TokenTTL().String())
	assert.Equal(t, "24h0m0s", cfg.GeocodeCacheTTL().String())
}
