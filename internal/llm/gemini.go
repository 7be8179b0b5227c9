package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// Gemini generates through the Google GenAI SDK. The SDK client is created on
// first use so a missing key only surfaces when a request is made.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration

	once   sync.Once
	client *genai.Client
	err    error
}

func NewGemini(apiKey, model, baseURL string, timeout time.Duration) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, baseURL: baseURL, timeout: timeout}
}

func (g *Gemini) Name() string { return "Gemini" }

func (g *Gemini) sdk(ctx context.Context) (*genai.Client, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return nil, &NotConfiguredError{Provider: g.Name()}
	}
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.baseURL != "" {
			cfg.HTTPOptions.BaseURL = g.baseURL
		}
		g.client, g.err = genai.NewClient(ctx, cfg)
		if g.err != nil {
			g.err = fmt.Errorf("failed to create genai client: %w", g.err)
		}
	})
	return g.client, g.err
}

// toGemini splits system messages into the system instruction and maps the
// remaining turns onto user and model contents.
func toGemini(messages []Message) (*genai.Content, []*genai.Content) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		var role genai.Role = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		if len(m.Parts) == 0 {
			contents = append(contents, genai.NewContentFromText(m.Content, role))
			continue
		}
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.IsImage() {
				parts = append(parts, genai.NewPartFromBytes(p.ImageData, p.ImageMIME))
				continue
			}
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser), contents
}

func (g *Gemini) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gemini) Complete(ctx context.Context, messages []Message) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	system, contents := toGemini(messages)
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

func (g *Gemini) Stream(ctx context.Context, messages []Message, onDelta func(string) error) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	system, contents := toGemini(messages)
	var full strings.Builder
	for resp, err := range client.Models.GenerateContentStream(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: system,
	}) {
		if err != nil {
			return full.String(), fmt.Errorf("gemini stream: %w", err)
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	return full.String(), nil
}
