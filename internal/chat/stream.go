package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/llm"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

// Event is one server-sent event of a streamed reply.
type Event struct {
	Name string
	Data any
}

// Emitter delivers events to the client. Its errors are ignored: the reply is
// still completed and stored when the client has gone away.
type Emitter func(Event) error

type MetaEvent struct {
	ChatID      int64       `json:"chatId"`
	ChatTitle   *string     `json:"chatTitle"`
	UserMessage MessageView `json:"userMessage"`
}

type DeltaEvent struct {
	Content string `json:"content"`
}

type WarningEvent struct {
	Warning string `json:"warning"`
	Reason  string `json:"reason,omitempty"`
}

type DoneEvent struct {
	ChatID    int64       `json:"chatId"`
	ChatTitle *string     `json:"chatTitle"`
	Message   MessageView `json:"message"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}

// Stream is an accepted message whose reply has not been produced yet.
type Stream struct {
	s     *Service
	chat  *store.Chat
	isNew bool
	user  *store.Message
}

// OpenStream validates and stores the user message. Errors returned here are
// reported before any event is sent.
func (s *Service) OpenStream(ctx context.Context, userID int64, chatID *int64, text string) (*Stream, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, badRequest("Message is required.")
	}

	chat, isNew, err := s.ensureChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	user := newMessage(chat.ID, roleUser, text)
	if err := s.messages.Add(ctx, user); err != nil {
		return nil, err
	}
	return &Stream{s: s, chat: chat, isNew: isNew, user: user}, nil
}

func (st *Stream) Meta() Event {
	return Event{Name: "meta", Data: MetaEvent{
		ChatID:      st.chat.ID,
		ChatTitle:   st.chat.Title,
		UserMessage: viewOf(*st.user),
	}}
}

// Run streams the reply as delta events and finishes with a done or error
// event. When streaming fails it falls back to a single completion.
func (st *Stream) Run(ctx context.Context, emit Emitter) {
	s := st.s
	ctx = context.WithoutCancel(ctx)
	send := func(name string, data any) {
		if err := emit(Event{Name: name, Data: data}); err != nil {
			s.logger.Debug("stream event dropped", zap.String("event", name), zap.Error(err))
		}
	}

	msgs, err := s.recommendationMessages(ctx, st.chat.ID)
	if err != nil {
		s.logger.Error("load chat history failed", zap.Int64("chat_id", st.chat.ID), zap.Error(err))
		send("error", ErrorEvent{Error: failedContact})
		return
	}

	fallback := false
	reply, err := s.llm.Stream(ctx, msgs, func(delta string) error {
		send("delta", DeltaEvent{Content: delta})
		return nil
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			send("error", ErrorEvent{Error: err.Error()})
			return
		}

		s.logger.Warn("streaming failed", zap.Int64("chat_id", st.chat.ID), zap.Error(err))
		send("stream-warning", WarningEvent{Warning: streamFallbackWarning, Reason: err.Error()})
		fallback = true

		reply, err = s.llm.Complete(ctx, msgs)
		if err != nil {
			if errors.Is(err, llm.ErrNotConfigured) {
				send("error", ErrorEvent{Error: err.Error()})
				return
			}
			s.logger.Error("completion failed", zap.Int64("chat_id", st.chat.ID), zap.Error(err))
			send("error", ErrorEvent{Error: failedContact})
			return
		}
	}

	assistant, err := s.finish(ctx, st.chat, cleanReply(reply), finishOptions{
		newChat:      st.isNew,
		firstMessage: st.user.Content,
		itinerary:    true,
	})
	if err != nil {
		s.logger.Error("store reply failed", zap.Int64("chat_id", st.chat.ID), zap.Error(err))
		send("error", ErrorEvent{Error: failedContact})
		return
	}

	msg := viewOf(*assistant)
	msg.StreamingFallback = fallback
	send("done", DoneEvent{ChatID: st.chat.ID, ChatTitle: st.chat.Title, Message: msg})
}
