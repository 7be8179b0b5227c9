package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zalando/go-keyring"
)

const keyringService = "travelrec"

// SecretNames are the keys accepted by `travelrec secret set`.
var SecretNames = []string{
	"jwt_secret",
	"openai_api_key",
	"groq_api_key",
	"gemini_api_key",
	"mapbox_api_key",
}

// Keyring is the slice of the OS keyring the config needs.
type Keyring interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }

func (osKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

var defaultKeyring Keyring = osKeyring{}

// StoreSecret saves one of SecretNames in the OS keyring.
func StoreSecret(name, value string) error {
	if !slices.Contains(SecretNames, name) {
		return fmt.Errorf("unknown secret %q (valid: %v)", name, SecretNames)
	}
	if value == "" {
		return errors.New("secret value is empty")
	}
	return defaultKeyring.Set(keyringService, name, value)
}

// resolveSecrets lets keyring entries win over the environment and the file.
// An unavailable keyring is treated like an empty one.
func (c *Config) resolveSecrets(kr Keyring) {
	for name, dst := range c.secretFields() {
		v, err := kr.Get(keyringService, name)
		if err != nil || v == "" {
			continue
		}
		*dst = v
	}
}

func (c *Config) secretFields() map[string]*string {
	return map[string]*string{
		"jwt_secret":     &c.Auth.JWTSecret,
		"openai_api_key": &c.LLM.OpenAI.APIKey,
		"groq_api_key":   &c.LLM.Groq.APIKey,
		"gemini_api_key": &c.LLM.Gemini.APIKey,
		"mapbox_api_key": &c.Geocoding.MapboxAPIKey,
	}
}
