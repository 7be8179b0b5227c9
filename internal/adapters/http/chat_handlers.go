package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/popalexr/Travel-Recommendation/internal/chat"
	"github.com/popalexr/Travel-Recommendation/internal/core"
)

type chatHandlers struct {
	chats *chat.Service
}

type messageRequest struct {
	ChatID  *int64 `json:"chatId"`
	Message string `json:"message"`
}

type chatIDRequest struct {
	ChatID *int64 `json:"chatId"`
}

func (h *chatHandlers) send(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeChatBody(w, r, &req) {
		return
	}
	reply, err := h.chats.Send(r.Context(), userID(r), req.ChatID, req.Message)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// stream answers with server-sent events. Errors found before the first event
// are plain JSON errors.
func (h *chatHandlers) stream(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeChatBody(w, r, &req) {
		return
	}
	st, err := h.chats.OpenStream(r.Context(), userID(r), req.ChatID, req.Message)
	if err != nil {
		chatFailure(w, r, err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	emit := func(ev chat.Event) error {
		data, err := json.Marshal(ev.Data)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	_ = emit(st.Meta())
	st.Run(r.Context(), emit)
}

func (h *chatHandlers) upload(kind chat.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, chat.DefaultMaxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusBadRequest, "File too large. Please upload files up to 10MB.")
				return
			}
		}

		chatID, ok := formChatID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid chat ID.")
			return
		}

		upload, err := formUpload(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "File too large. Please upload files up to 10MB.")
			return
		}

		res, err := h.chats.Upload(r.Context(), userID(r), chatID, kind, upload)
		if err != nil {
			chatFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *chatHandlers) editLatest(w http.ResponseWriter, r *http.Request) {
	var req chat.EditRequest
	if !decodeChatBody(w, r, &req) {
		return
	}
	conv, err := h.chats.EditLatest(r.Context(), userID(r), req)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *chatHandlers) regenerate(w http.ResponseWriter, r *http.Request) {
	var req chatIDRequest
	if !decodeChatBody(w, r, &req) {
		return
	}
	conv, err := h.chats.Regenerate(r.Context(), userID(r), req.ChatID)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *chatHandlers) messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChatID(w, r)
	if !ok {
		return
	}
	msgs, err := h.chats.Messages(r.Context(), userID(r), id)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *chatHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChatID(w, r)
	if !ok {
		return
	}
	if err := h.chats.Delete(r.Context(), userID(r), id); err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *chatHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.chats.Dashboard(r.Context(), userID(r))
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *chatHandlers) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChatID(w, r)
	if !ok {
		return
	}
	p, err := h.chats.Profile(r.Context(), userID(r), id)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]chat.Profile{"profile": p})
}

func (h *chatHandlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChatID(w, r)
	if !ok {
		return
	}
	var in *chat.ProfileInput
	if !decodeChatBody(w, r, &in) {
		return
	}
	p, err := h.chats.SaveProfile(r.Context(), userID(r), id, in)
	if err != nil {
		chatFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]chat.Profile{"profile": p})
}

// decodeChatBody decodes a JSON body into v. An empty body leaves v zero.
func decodeChatBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

func pathChatID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid chat ID.")
		return 0, false
	}
	return id, true
}

// formChatID reads the optional chatId form field.
func formChatID(r *http.Request) (*int64, bool) {
	raw := strings.TrimSpace(r.FormValue("chatId"))
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// formUpload reads the "file" part. A missing part yields nil.
func formUpload(r *http.Request) (*chat.Upload, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	ct, _, _ := strings.Cut(header.Header.Get("Content-Type"), ";")
	ct = strings.TrimSpace(ct)
	if !core.IsUploadType(ct) {
		if guessed := core.GetContentType(header.Filename); core.IsUploadType(guessed) {
			ct = guessed
		}
	}
	return &chat.Upload{Name: header.Filename, ContentType: ct, Data: data}, nil
}
