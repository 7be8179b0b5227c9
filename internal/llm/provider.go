package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Options selects and configures one provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New builds the client for opts.Provider. A missing API key is not an error
// here; requests fail with a NotConfiguredError instead.
func New(opts Options) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI, "":
		url := opts.BaseURL
		if url == "" {
			url = OpenAIURL
		}
		return NewCompatible("OpenAI", url, opts.APIKey, opts.Model, opts.Timeout), nil
	case ProviderGroq:
		url := opts.BaseURL
		if url == "" {
			url = GroqURL
		}
		return NewCompatible("Groq", url, opts.APIKey, opts.Model, opts.Timeout), nil
	case ProviderGemini:
		return NewGemini(opts.APIKey, opts.Model, opts.BaseURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
