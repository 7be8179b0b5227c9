package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	OpenAIURL = "https://api.openai.com/v1/chat/completions"
	GroqURL   = "https://api.groq.com/openai/v1/chat/completions"
)

// Compatible speaks the OpenAI chat-completions protocol.
type Compatible struct {
	name       string
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewCompatible(name, url, apiKey, model string, timeout time.Duration) *Compatible {
	return &Compatible{
		name:       name,
		url:        url,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Compatible) Name() string { return c.name }

type compatibleRequest struct {
	Model    string              `json:"model"`
	Messages []compatibleMessage `json:"messages"`
	Stream   bool                `json:"stream,omitempty"`
}

type compatibleMessage struct {
	Role    Role `json:"role"`
	Content any  `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type compatibleResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message,omitempty"`
		Delta *struct {
			Content string `json:"content"`
		} `json:"delta,omitempty"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func toCompatible(messages []Message) []compatibleMessage {
	out := make([]compatibleMessage, 0, len(messages))
	for _, m := range messages {
		if len(m.Parts) == 0 {
			out = append(out, compatibleMessage{Role: m.Role, Content: m.Content})
			continue
		}
		parts := make([]contentPart, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.IsImage() {
				url := "data:" + p.ImageMIME + ";base64," + base64.StdEncoding.EncodeToString(p.ImageData)
				parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: url, Detail: "high"}})
				continue
			}
			parts = append(parts, contentPart{Type: "text", Text: p.Text})
		}
		out = append(out, compatibleMessage{Role: m.Role, Content: parts})
	}
	return out
}

// Complete returns the first choice's content. A null content yields "".
func (c *Compatible) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.do(ctx, compatibleRequest{Model: c.model, Messages: toCompatible(messages)})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded compatibleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.name, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message == nil || decoded.Choices[0].Message.Content == nil {
		return "", nil
	}
	return *decoded.Choices[0].Message.Content, nil
}

// Stream reads server-sent "data:" chunks until "[DONE]".
func (c *Compatible) Stream(ctx context.Context, messages []Message, onDelta func(string) error) (string, error) {
	resp, err := c.do(ctx, compatibleRequest{Model: c.model, Messages: toCompatible(messages), Stream: true})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return full.String(), nil
		}

		var chunk compatibleResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return full.String(), fmt.Errorf("%s stream error: %s", c.name, chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("%s stream: %w", c.name, err)
	}
	return full.String(), nil
}

func (c *Compatible) do(ctx context.Context, body compatibleRequest) (*http.Response, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, &NotConfiguredError{Provider: c.name}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, &APIError{Provider: c.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
