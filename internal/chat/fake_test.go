package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/popalexr/Travel-Recommendation/internal/llm"
)

// fakeLLM answers by prompt: titles, itineraries and everything else.
type fakeLLM struct {
	mu sync.Mutex

	reply     string
	replyErr  error
	title     string
	titleErr  error
	itinerary string
	deltas    []string
	streamErr error

	calls   [][]llm.Message
	streams int
}

func (f *fakeLLM) Name() string { return "Fake" }

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)

	switch messages[0].Content {
	case titlePrompt:
		return f.title, f.titleErr
	case itineraryPrompt:
		if f.itinerary == "" {
			return "", errors.New("no itinerary scripted")
		}
		return f.itinerary, nil
	}
	return f.reply, f.replyErr
}

func (f *fakeLLM) Stream(ctx context.Context, messages []llm.Message, onDelta func(string) error) (string, error) {
	f.mu.Lock()
	f.streams++
	deltas, err := f.deltas, f.streamErr
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	var full string
	for _, d := range deltas {
		full += d
		if err := onDelta(d); err != nil {
			return full, err
		}
	}
	return full, nil
}

// mainCalls returns the requests that were neither title nor itinerary lookups.
func (f *fakeLLM) mainCalls() [][]llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]llm.Message
	for _, c := range f.calls {
		if c[0].Content != titlePrompt && c[0].Content != itineraryPrompt {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeLLM) countPrompt(prompt string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c[0].Content == prompt {
			n++
		}
	}
	return n
}
