// Package chat runs the travel recommendation conversations: it stores user
// turns, asks the configured LLM for HTML replies, analyzes uploaded travel
// documents and keeps the per-chat trip profile.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/popalexr/Travel-Recommendation/internal/store"
)

// RequestError is a client mistake; its message is safe to show.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(msg string) error { return &RequestError{Message: msg} }

var ErrChatNotFound = errors.New("Chat not found.")

// EngineError wraps a failed LLM call with the message shown to the user.
type EngineError struct {
	Message string
	Err     error
}

func (e *EngineError) Error() string { return e.Message + ": " + e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

const (
	failedContact    = "Failed to contact the recommendation engine."
	failedRegenerate = "Failed to regenerate the recommendation."
)

type ChatStore interface {
	Create(ctx context.Context, userID int64, title *string) (*store.Chat, error)
	ForUser(ctx context.Context, id, userID int64) (*store.Chat, error)
	ListForUser(ctx context.Context, userID int64) ([]store.Chat, error)
	SetTitle(ctx context.Context, id int64, title string) error
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type MessageStore interface {
	Add(ctx context.Context, m *store.Message) error
	ListByChat(ctx context.Context, chatID int64) ([]store.Message, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	DeleteAfter(ctx context.Context, chatID, messageID int64) (int64, error)
}

type ProfileStore interface {
	Get(ctx context.Context, chatID int64) (*store.TripProfile, error)
	Upsert(ctx context.Context, p *store.TripProfile) error
}

// MessageView is the JSON shape of a stored message.
type MessageView struct {
	ID                int64  `json:"id"`
	Role              string `json:"role"`
	Content           string `json:"content"`
	Timestamp         string `json:"timestamp"`
	Itinerary         string `json:"itinerary,omitempty"`
	StreamingFallback bool   `json:"streamingFallback,omitempty"`
}

func viewOf(m store.Message) MessageView {
	content := m.Content
	if m.Role == string(roleAssistant) {
		content = StripCodeFences(content)
	}
	v := MessageView{ID: m.ID, Role: m.Role, Content: content}
	if m.ItineraryJSON != nil {
		v.Itinerary = *m.ItineraryJSON
	}
	return v
}

func viewsOf(messages []store.Message) []MessageView {
	out := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		out = append(out, viewOf(m))
	}
	return out
}

// Reply is the outcome of a sent message.
type Reply struct {
	ChatID    int64         `json:"chatId"`
	ChatTitle *string       `json:"chatTitle"`
	Message   MessageView   `json:"message"`
	Messages  []MessageView `json:"messages"`
}

// UploadResult is the outcome of an analyzed document.
type UploadResult struct {
	ChatID    int64         `json:"chatId"`
	ChatTitle *string       `json:"chatTitle"`
	Messages  []MessageView `json:"messages"`
}

// Conversation is a chat's full message list after an edit or regeneration.
type Conversation struct {
	ChatID   int64         `json:"chatId"`
	Messages []MessageView `json:"messages"`
}

type Recommendation struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Dashboard lists the user's chats and the messages of the newest one.
type Dashboard struct {
	PreviousRecommendations []Recommendation `json:"previousRecommendations"`
	ChatMessages            []MessageView    `json:"chatMessages"`
}

// Profile is the JSON shape of a trip profile; missing values are "".
type Profile struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Budget      string `json:"budget"`
	Travelers   string `json:"travelers"`
	Interests   string `json:"interests"`
	Constraints string `json:"constraints"`
}

// ProfileInput is a submitted trip profile. Nil and blank values clear the field.
type ProfileInput struct {
	Destination *string `json:"destination"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Budget      *string `json:"budget"`
	Travelers   *string `json:"travelers"`
	Interests   *string `json:"interests"`
	Constraints *string `json:"constraints"`
}

type EditRequest struct {
	ChatID    *int64 `json:"chatId"`
	MessageID *int64 `json:"messageId"`
	Message   string `json:"message"`
}

type role string

const (
	roleUser      role = "user"
	roleAssistant role = "assistant"
)

func newMessage(chatID int64, r role, content string) *store.Message {
	return &store.Message{ChatID: chatID, Role: string(r), Content: content, CreatedAt: time.Now()}
}

var errMalformedPDF = errors.New("malformed pdf")
