// Package llm talks to chat-completion providers: OpenAI and Groq through the
// OpenAI wire format, Gemini through the Google GenAI SDK.
package llm

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is one piece of multi-part user content: text or an inline image.
type Part struct {
	Text      string
	ImageMIME string
	ImageData []byte
}

func TextPart(text string) Part { return Part{Text: text} }

func ImagePart(mime string, data []byte) Part { return Part{ImageMIME: mime, ImageData: data} }

func (p Part) IsImage() bool { return p.ImageMIME != "" }

// Message is a chat turn. Parts, when set, replace Content.
type Message struct {
	Role    Role
	Content string
	Parts   []Part
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Client is a configured provider.
type Client interface {
	// Name is the provider's display name, e.g. "OpenAI".
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream calls onDelta for every content fragment and returns the full text.
	Stream(ctx context.Context, messages []Message, onDelta func(string) error) (string, error)
}

var ErrNotConfigured = errors.New("llm provider not configured")

// NotConfiguredError reports a provider without an API key.
type NotConfiguredError struct {
	Provider string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s API key is not configured on the server.", e.Provider)
}

func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// APIError is a provider answer with status >= 400.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API returned status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.Status, e.Body)
}
