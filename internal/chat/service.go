package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/popalexr/Travel-Recommendation/internal/llm"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

type Service struct {
	chats     ChatStore
	messages  MessageStore
	profiles  ProfileStore
	llm       llm.Client
	policy    *bluemonday.Policy
	logger    *zap.Logger
	maxUpload int64
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxUploadBytes caps accepted document uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

func NewService(chats ChatStore, messages MessageStore, profiles ProfileStore, client llm.Client, opts ...Option) *Service {
	s := &Service{
		chats:     chats,
		messages:  messages,
		profiles:  profiles,
		llm:       client,
		policy:    bluemonday.UGCPolicy(),
		logger:    zap.NewNop(),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send stores a user message, asks for a recommendation and stores the reply.
// A nil chatID starts a new chat, which gets a generated title.
func (s *Service) Send(ctx context.Context, userID int64, chatID *int64, text string) (*Reply, error) {
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

	msgs, err := s.recommendationMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	reply, err := s.complete(ctx, msgs)
	if err != nil {
		return nil, &EngineError{Message: failedContact, Err: err}
	}

	assistant, err := s.finish(ctx, chat, reply, finishOptions{newChat: isNew, firstMessage: text, itinerary: true})
	if err != nil {
		return nil, err
	}

	msg := viewOf(*assistant)
	return &Reply{
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		Message:   msg,
		Messages:  []MessageView{viewOf(*user), msg},
	}, nil
}

// Upload analyzes a travel document and stores the exchange in the chat.
func (s *Service) Upload(ctx context.Context, userID int64, chatID *int64, kind DocumentKind, f *Upload) (*UploadResult, error) {
	if err := s.validateUpload(kind, f); err != nil {
		return nil, err
	}
	spec := kind.spec()

	chat, isNew, err := s.ensureChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	name := f.Name
	if strings.TrimSpace(name) == "" {
		name = spec.defaultName
	}
	label := spec.label + name
	user := newMessage(chat.ID, roleUser, label)
	if err := s.messages.Add(ctx, user); err != nil {
		return nil, err
	}

	history, err := s.history(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	msgs := append([]llm.Message{llm.System(spec.prompt)}, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Parts: documentParts(kind, f)})

	reply, err := s.llm.Complete(ctx, msgs)
	if err != nil {
		return nil, &EngineError{Message: spec.failure, Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		reply = uninterpretedReply
	}

	assistant, err := s.finish(ctx, chat, StripCodeFences(reply), finishOptions{newChat: isNew, firstMessage: label})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document analyzed",
		zap.Int64("chat_id", chat.ID),
		zap.Stringer("kind", kind),
		zap.String("content_type", f.ContentType),
		zap.Int("bytes", len(f.Data)))

	return &UploadResult{
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		Messages:  []MessageView{viewOf(*user), viewOf(*assistant)},
	}, nil
}

// EditLatest rewrites the newest user message, drops everything after it and
// regenerates the reply.
func (s *Service) EditLatest(ctx context.Context, userID int64, req EditRequest) (*Conversation, error) {
	if req.ChatID == nil || req.MessageID == nil {
		return nil, badRequest("Chat and message IDs are required.")
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, badRequest("Message content is required.")
	}

	chat, err := s.chat(ctx, *req.ChatID, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	last := lastUserMessage(history)
	if last < 0 {
		return nil, badRequest("No user message found to edit.")
	}
	target := history[last]
	if target.ID != *req.MessageID {
		return nil, badRequest("Only the latest user message can be edited.")
	}
	if IsUploadMessage(target.Content) {
		return nil, badRequest("Editing uploaded documents is not supported.")
	}

	if err := s.messages.UpdateContent(ctx, target.ID, text); err != nil {
		return nil, err
	}
	return s.regenerate(ctx, chat, target.ID)
}

// Regenerate replaces the replies after the newest user message.
func (s *Service) Regenerate(ctx context.Context, userID int64, chatID *int64) (*Conversation, error) {
	if chatID == nil {
		return nil, badRequest("Chat ID is required.")
	}

	chat, err := s.chat(ctx, *chatID, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	last := lastUserMessage(history)
	if last < 0 {
		return nil, badRequest("No user message found to regenerate.")
	}
	if IsUploadMessage(history[last].Content) {
		return nil, badRequest("Regeneration is not available for uploaded documents.")
	}
	return s.regenerate(ctx, chat, history[last].ID)
}

func (s *Service) regenerate(ctx context.Context, chat *store.Chat, lastUserID int64) (*Conversation, error) {
	if _, err := s.messages.DeleteAfter(ctx, chat.ID, lastUserID); err != nil {
		return nil, err
	}

	msgs, err := s.recommendationMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	reply, err := s.complete(ctx, msgs)
	if err != nil {
		return nil, &EngineError{Message: failedRegenerate, Err: err}
	}
	if _, err := s.finish(ctx, chat, reply, finishOptions{itinerary: true}); err != nil {
		return nil, err
	}

	updated, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	return &Conversation{ChatID: chat.ID, Messages: viewsOf(updated)}, nil
}

func (s *Service) Messages(ctx context.Context, userID, chatID int64) ([]MessageView, error) {
	if _, err := s.chat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return viewsOf(messages), nil
}

// Delete removes the chat with its messages and trip profile.
func (s *Service) Delete(ctx context.Context, userID, chatID int64) error {
	err := s.chats.Delete(ctx, chatID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}

func (s *Service) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		PreviousRecommendations: make([]Recommendation, 0, len(chats)),
		ChatMessages:            []MessageView{},
	}
	for _, c := range chats {
		title := "Untitled chat"
		if c.Title != nil && strings.TrimSpace(*c.Title) != "" {
			title = *c.Title
		}
		d.PreviousRecommendations = append(d.PreviousRecommendations, Recommendation{
			ID:       c.ID,
			Title:    title,
			Subtitle: "AI travel recommendations",
		})
	}
	if len(chats) == 0 {
		return d, nil
	}

	messages, err := s.messages.ListByChat(ctx, chats[0].ID)
	if err != nil {
		return nil, err
	}
	d.ChatMessages = viewsOf(messages)
	return d, nil
}

func (s *Service) Profile(ctx context.Context, userID, chatID int64) (Profile, error) {
	if _, err := s.chat(ctx, chatID, userID); err != nil {
		return Profile{}, err
	}
	p, err := s.profile(ctx, chatID)
	if err != nil {
		return Profile{}, err
	}
	return profileView(p), nil
}

func (s *Service) SaveProfile(ctx context.Context, userID, chatID int64, in *ProfileInput) (Profile, error) {
	if in == nil {
		return Profile{}, badRequest("Profile data is required.")
	}
	if _, err := s.chat(ctx, chatID, userID); err != nil {
		return Profile{}, err
	}

	p := &store.TripProfile{
		ChatID:      chatID,
		Destination: normalize(in.Destination),
		StartDate:   normalize(in.StartDate),
		EndDate:     normalize(in.EndDate),
		Budget:      normalize(in.Budget),
		Travelers:   normalize(in.Travelers),
		Interests:   normalize(in.Interests),
		Constraints: normalize(in.Constraints),
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return profileView(p), nil
}

func profileView(p *store.TripProfile) Profile {
	if p == nil {
		return Profile{}
	}
	str := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return Profile{
		Destination: str(p.Destination),
		StartDate:   str(p.StartDate),
		EndDate:     str(p.EndDate),
		Budget:      str(p.Budget),
		Travelers:   str(p.Travelers),
		Interests:   str(p.Interests),
		Constraints: str(p.Constraints),
	}
}

func (s *Service) chat(ctx context.Context, chatID, userID int64) (*store.Chat, error) {
	c, err := s.chats.ForUser(ctx, chatID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return c, err
}

func (s *Service) ensureChat(ctx context.Context, userID int64, chatID *int64) (*store.Chat, bool, error) {
	if chatID != nil {
		c, err := s.chat(ctx, *chatID, userID)
		return c, false, err
	}
	c, err := s.chats.Create(ctx, userID, nil)
	return c, true, err
}

func (s *Service) profile(ctx context.Context, chatID int64) (*store.TripProfile, error) {
	p, err := s.profiles.Get(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *Service) history(ctx context.Context, chatID int64) ([]llm.Message, error) {
	stored, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	return out, nil
}

// recommendationMessages lays out the system prompt, the trip profile and the
// conversation so far.
func (s *Service) recommendationMessages(ctx context.Context, chatID int64) ([]llm.Message, error) {
	profile, err := s.profile(ctx, chatID)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, chatID)
	if err != nil {
		return nil, err
	}

	msgs := []llm.Message{llm.System(recommendationPrompt)}
	if pc := profileContext(profile); pc != "" {
		msgs = append(msgs, llm.System(pc))
	}
	return append(msgs, history...), nil
}

func (s *Service) complete(ctx context.Context, msgs []llm.Message) (string, error) {
	reply, err := s.llm.Complete(ctx, msgs)
	if err != nil {
		return "", err
	}
	return cleanReply(reply), nil
}

func cleanReply(reply string) string {
	reply = StripCodeFences(reply)
	if strings.TrimSpace(reply) == "" {
		return emptyReply
	}
	return reply
}

type finishOptions struct {
	newChat      bool
	firstMessage string
	itinerary    bool
}

// finish sanitizes and stores the assistant reply. The itinerary and the
// title of a new chat are asked for concurrently; both are best effort.
func (s *Service) finish(ctx context.Context, chat *store.Chat, reply string, opts finishOptions) (*store.Message, error) {
	reply = s.policy.Sanitize(reply)

	var (
		itinerary *string
		title     string
	)
	g, gctx := errgroup.WithContext(ctx)
	if opts.itinerary {
		g.Go(func() error {
			itinerary = s.extractItinerary(gctx, reply)
			return nil
		})
	}
	if opts.newChat {
		g.Go(func() error {
			title = s.generateTitle(gctx, opts.firstMessage, reply)
			return nil
		})
	}
	_ = g.Wait()

	assistant := newMessage(chat.ID, roleAssistant, reply)
	assistant.ItineraryJSON = itinerary
	if err := s.messages.Add(ctx, assistant); err != nil {
		return nil, err
	}

	if opts.newChat {
		if err := s.chats.SetTitle(ctx, chat.ID, title); err != nil {
			return nil, err
		}
		chat.Title = &title
	}
	if err := s.chats.Touch(ctx, chat.ID); err != nil {
		s.logger.Warn("touch chat failed", zap.Int64("chat_id", chat.ID), zap.Error(err))
	}
	return assistant, nil
}

func (s *Service) generateTitle(ctx context.Context, firstMessage, reply string) string {
	content := "First user message: " + firstMessage
	if strings.TrimSpace(reply) != "" {
		content += "\nAssistant reply: " + reply
	}

	raw, err := s.llm.Complete(ctx, []llm.Message{llm.System(titlePrompt), llm.User(content)})
	if err != nil {
		s.logger.Debug("title generation failed", zap.Error(err))
		return DefaultTitle
	}
	return titleFromReply(raw)
}

type itineraryDoc struct {
	Days []json.RawMessage `json:"days"`
}

// extractItinerary asks for the day-by-day plan of a reply as compact JSON.
// It returns nil when there is none or anything goes wrong.
func (s *Service) extractItinerary(ctx context.Context, reply string) *string {
	if strings.TrimSpace(reply) == "" {
		return nil
	}

	raw, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(itineraryPrompt),
		llm.User("Assistant response:\n" + reply),
	})
	if err != nil {
		s.logger.Debug("itinerary extraction failed", zap.Error(err))
		return nil
	}

	content := strings.TrimSpace(StripCodeFences(raw))
	if content == "" {
		return nil
	}
	var doc itineraryDoc
	if err := json.Unmarshal([]byte(content), &doc); err != nil || len(doc.Days) == 0 {
		return nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(content)); err != nil {
		return nil
	}
	out := compact.String()
	return &out
}

func lastUserMessage(messages []store.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == string(roleUser) {
			return i
		}
	}
	return -1
}
