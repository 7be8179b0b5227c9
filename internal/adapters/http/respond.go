package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/popalexr/Travel-Recommendation/internal/chat"
	"github.com/popalexr/Travel-Recommendation/internal/llm"
	"github.com/popalexr/Travel-Recommendation/internal/logging"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers the chat-style APIs: {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeMessage answers the account APIs: {timestamp, message[, errors]}.
func writeMessage(w http.ResponseWriter, status int, message string, fields map[string]string) {
	body := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   message,
	}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads a JSON body into v. An empty body yields errEmptyBody.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// chatFailure maps chat and LLM errors onto the API answers.
func chatFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr        *chat.RequestError
		notConfigured *llm.NotConfiguredError
		engine        *chat.EngineError
	)
	switch {
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, reqErr.Message)
	case errors.Is(err, chat.ErrChatNotFound):
		writeError(w, http.StatusNotFound, chat.ErrChatNotFound.Error())
	case errors.As(err, &notConfigured):
		writeError(w, http.StatusInternalServerError, notConfigured.Error())
	case errors.As(err, &engine):
		logging.FromContext(r.Context()).Warn("llm request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, engine.Message)
	default:
		logging.FromContext(r.Context()).Error("chat request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}
