package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popalexr/Travel-Recommendation/internal/account"
	"github.com/popalexr/Travel-Recommendation/internal/assets"
	"github.com/popalexr/Travel-Recommendation/internal/auth"
	"github.com/popalexr/Travel-Recommendation/internal/chat"
	"github.com/popalexr/Travel-Recommendation/internal/geo"
	"github.com/popalexr/Travel-Recommendation/internal/inertia"
	"github.com/popalexr/Travel-Recommendation/internal/llm"
	"github.com/popalexr/Travel-Recommendation/internal/pages"
	"github.com/popalexr/Travel-Recommendation/internal/store"
	"github.com/popalexr/Travel-Recommendation/internal/store/storetest"
)

type scriptedLLM struct {
	reply     string
	err       error
	deltas    []string
	streamErr error
}

func (s *scriptedLLM) Name() string { return "Scripted" }

func (s *scriptedLLM) Complete(context.Context, []llm.Message) (string, error) {
	return s.reply, s.err
}

func (s *scriptedLLM) Stream(_ context.Context, _ []llm.Message, onDelta func(string) error) (string, error) {
	if s.streamErr != nil {
		return "", s.streamErr
	}
	var full string
	for _, d := range s.deltas {
		full += d
		if err := onDelta(d); err != nil {
			return full, err
		}
	}
	return full, nil
}

type server struct {
	handler http.Handler
	llm     *scriptedLLM
	cookie  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := storetest.New(t)

	client := &scriptedLLM{reply: "Visit Lisbon."}
	sessions := auth.NewService(store.NewSessions(db), auth.NewTokens("test-secret-test-secret", time.Hour))
	chats := chat.NewService(store.NewChats(db), store.NewMessages(db), store.NewProfiles(db), client)

	dist := fstest.MapFS{
		"assets/app-1a2b.js": {Data: []byte("console.log(1)")},
		"favicon.ico":        {Data: []byte{0, 0, 1, 0}},
	}
	renderer := inertia.New(pages.NewResolver(pages.Generated(nil), pages.FallbackLayout(nil)), assets.NewStore(nil, assets.WithVersion("v1")))

	h := NewRouter(Deps{
		Renderer: renderer,
		Accounts: account.NewService(store.NewUsers(db)),
		Sessions: sessions,
		Cookies:  auth.Cookies{Name: "AUTH_TOKEN"},
		Guard:    auth.DefaultGuard(),
		Chats:    chats,
		Geocoder: geo.New(geo.Options{}),
		Assets:   dist,
	})
	return &server{handler: h, llm: client}
}

func (s *server) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cookie != "" {
		req.AddCookie(&http.Cookie{Name: "AUTH_TOKEN", Value: s.cookie})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *server) signUp(t *testing.T) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/register", map[string]string{
		"email": "Ana@Example.com", "password": "correct-horse", "firstName": "Ana",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body signedIn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "AUTH_TOKEN" {
			s.cookie = c.Value
		}
	}
	require.Equal(t, body.SessionToken, s.cookie)
	return body.UserID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/register", map[string]string{"email": "bad", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed.", body["message"])
	assert.Contains(t, body, "timestamp")
	assert.Contains(t, body["errors"], "email")

	id := s.signUp(t)
	assert.Positive(t, id)

	s.cookie = ""
	rec = s.do(t, http.MethodPost, "/register", map[string]string{"email": "ana@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email is already registered.", decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"email": "ana@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/login", map[string]string{"email": " ANA@example.com ", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Login successful.", body["message"])
	assert.EqualValues(t, id, body["userId"])
}

func TestLogoutRevokesSession(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	rec := s.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully.", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuards(t *testing.T) {
	s := newServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required.", decode(t, rec)["error"])

	s.signUp(t)
	rec = s.do(t, http.MethodPost, "/login", map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Already authenticated.", decode(t, rec)["message"])
}

func TestPages(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.Header.Set(inertia.HeaderInertia, "true")
	req.Header.Set(inertia.HeaderVersion, "v1")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page inertia.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Auth", page.Component)
	assert.Equal(t, "register", page.Props["initialTab"])

	s.signUp(t)
	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set(inertia.HeaderInertia, "true")
	req.Header.Set(inertia.HeaderVersion, "v1")
	req.AddCookie(&http.Cookie{Name: "AUTH_TOKEN", Value: s.cookie})
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "Settings", page.Component)
	user, ok := page.Props["user"].(map[string]any)
	require.True(t, ok, "user prop: %v", page.Props["user"])
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "Ana", user["firstName"])
}

func TestSettings(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	rec := s.do(t, http.MethodPost, "/api/settings/profile", map[string]string{"firstName": "  Ana Maria ", "lastName": " "})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode(t, rec)["profile"].(map[string]any)
	assert.Equal(t, "Ana Maria", profile["firstName"])
	assert.Nil(t, profile["lastName"])
	assert.Equal(t, "ana@example.com", profile["email"])

	rec = s.do(t, http.MethodPost, "/api/settings/profile", map[string]string{"firstName": strings.Repeat("a", 81)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name fields must be at most 80 characters.", decode(t, rec)["error"])

	tests := []struct {
		name    string
		current string
		next    string
		status  int
		want    string
	}{
		{"missing", "", "new-password", http.StatusBadRequest, "Current and new passwords are required."},
		{"wrong current", "nope-nope", "new-password", http.StatusBadRequest, "Current password is incorrect."},
		{"too short", "correct-horse", " short ", http.StatusBadRequest, "New password must be at least 8 characters."},
		{"ok", "correct-horse", "new-password", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/settings/password", passwordRequest{CurrentPassword: tt.current, NewPassword: tt.next})
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			if tt.want != "" {
				assert.Equal(t, tt.want, body["error"])
			} else {
				assert.Equal(t, "Password updated.", body["message"])
			}
		})
	}
}

func TestChatLifecycle(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	rec := s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message is required.", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]any{"chatId": 999, "message": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Chat not found.", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "Where to in May?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply chat.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Visit Lisbon.", reply.Message.Content)
	require.Len(t, reply.Messages, 2)
	assert.NotNil(t, reply.ChatTitle)

	base := "/api/chat/" + jsonNumber(reply.ChatID)

	rec = s.do(t, http.MethodGet, base+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["messages"], 2)

	rec = s.do(t, http.MethodPost, base+"/profile", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Profile data is required.", decode(t, rec)["error"])

	rec = s.do(t, http.MethodPost, base+"/profile", map[string]string{"destination": " Lisbon ", "budget": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, base+"/profile", nil)
	profile := decode(t, rec)["profile"].(map[string]any)
	assert.Equal(t, "Lisbon", profile["destination"])
	assert.Equal(t, "", profile["budget"])

	s.llm.reply = "Visit Porto."
	rec = s.do(t, http.MethodPost, "/api/chat/regenerate", map[string]any{"chatId": reply.ChatID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var conv chat.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Visit Porto.", conv.Messages[1].Content)

	rec = s.do(t, http.MethodPost, "/api/chat/edit-latest", map[string]any{"chatId": reply.ChatID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Chat and message IDs are required.", decode(t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash chat.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	require.Len(t, dash.PreviousRecommendations, 1)
	assert.Equal(t, "AI travel recommendations", dash.PreviousRecommendations[0].Subtitle)
	assert.Len(t, dash.ChatMessages, 2)

	rec = s.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = s.do(t, http.MethodGet, base+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatEngineErrors(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	s.llm.err = &llm.NotConfiguredError{Provider: "OpenAI"}
	rec := s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "OpenAI API key is not configured on the server.", decode(t, rec)["error"])

	s.llm.err = errors.New("connection reset")
	rec = s.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to contact the recommendation engine.", decode(t, rec)["error"])
}

func TestChatStream(t *testing.T) {
	s := newServer(t)
	s.signUp(t)
	s.llm.deltas = []string{"Visit ", "Lisbon."}

	rec := s.do(t, http.MethodPost, "/api/chat/stream", map[string]string{"message": "Where?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, "event: meta\ndata: "), out)
	assert.Contains(t, out, "event: delta\ndata: {\"content\":\"Visit \"}\n\n")
	assert.Contains(t, out, "event: done\n")
	assert.NotContains(t, out, "event: error")

	rec = s.do(t, http.MethodPost, "/api/chat/stream", map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestUploads(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	upload := func(target, name, contentType string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if data != nil {
			h := make(map[string][]string)
			h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
			h["Content-Type"] = []string{contentType}
			part, err := mw.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write(data)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, target, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.AddCookie(&http.Cookie{Name: "AUTH_TOKEN", Value: s.cookie})
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("/api/chat/upload-ticket", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A ticket file is required.", decode(t, rec)["error"])

	rec = upload("/api/chat/upload-document", "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDF or image files are supported.", decode(t, rec)["error"])

	s.llm.reply = "Flight LIS to OPO on 3 May."
	rec = upload("/api/chat/upload-ticket", "ticket.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res chat.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "Uploaded airplane ticket: ticket.png", res.Messages[0].Content)
}

func TestGeocodeNotConfigured(t *testing.T) {
	s := newServer(t)
	s.signUp(t)

	rec := s.do(t, http.MethodPost, "/api/geocode", map[string]any{"locations": []string{"Lisbon"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Mapbox API key is not configured.", decode(t, rec)["error"])
}

func TestAssets(t *testing.T) {
	s := newServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app-1a2b.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
