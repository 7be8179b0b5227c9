package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/account"
	"github.com/popalexr/Travel-Recommendation/internal/auth"
	"github.com/popalexr/Travel-Recommendation/internal/logging"
)

type accountHandlers struct {
	accounts *account.Service
	sessions *auth.Service
	cookies  auth.Cookies
}

type signedIn struct {
	Message      string `json:"message"`
	UserID       int64  `json:"userId"`
	SessionToken string `json:"sessionToken"`
}

func (h *accountHandlers) register(w http.ResponseWriter, r *http.Request) {
	var c account.Credentials
	if err := decodeJSON(r, &c); err != nil && !errors.Is(err, errEmptyBody) {
		writeMessage(w, http.StatusBadRequest, "Malformed request body.", nil)
		return
	}

	p, err := h.accounts.Register(r.Context(), c)
	var invalid *account.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeMessage(w, http.StatusBadRequest, "Validation failed.", invalid.Fields)
		return
	case errors.Is(err, account.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, err.Error(), nil)
		return
	case err != nil:
		h.internal(w, r, "register failed", err)
		return
	}

	h.signIn(w, r, http.StatusCreated, "Registration successful.", p.ID)
}

func (h *accountHandlers) login(w http.ResponseWriter, r *http.Request) {
	var c account.Credentials
	if err := decodeJSON(r, &c); err != nil && !errors.Is(err, errEmptyBody) {
		writeMessage(w, http.StatusBadRequest, "Malformed request body.", nil)
		return
	}

	p, err := h.accounts.Authenticate(r.Context(), c)
	var invalid *account.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeMessage(w, http.StatusBadRequest, "Validation failed.", invalid.Fields)
		return
	case errors.Is(err, account.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error(), nil)
		return
	case err != nil:
		h.internal(w, r, "login failed", err)
		return
	}

	h.signIn(w, r, http.StatusOK, "Login successful.", p.ID)
}

func (h *accountHandlers) signIn(w http.ResponseWriter, r *http.Request, status int, message string, userID int64) {
	session, err := h.sessions.Start(r.Context(), userID)
	if err != nil {
		h.internal(w, r, "start session failed", err)
		return
	}
	h.cookies.Set(w, session.Token, h.sessions.TTL())
	writeJSON(w, status, signedIn{Message: message, UserID: userID, SessionToken: session.Token})
}

func (h *accountHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		if err := h.sessions.Revoke(r.Context(), id.SessionID); err != nil {
			logging.FromContext(r.Context()).Warn("revoke session failed", zap.Error(err))
		}
	}
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

type namesRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type settingsProfile struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     string  `json:"email"`
}

func (h *accountHandlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	p, err := h.accounts.UpdateNames(r.Context(), userID(r), req.FirstName, req.LastName)
	switch {
	case errors.Is(err, account.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, account.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("update profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]settingsProfile{
		"profile": {FirstName: p.FirstName, LastName: p.LastName, Email: p.Email},
	})
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *accountHandlers) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	err := h.accounts.ChangePassword(r.Context(), userID(r), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, account.ErrPasswordsRequired),
		errors.Is(err, account.ErrWrongPassword),
		errors.Is(err, account.ErrNewPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, account.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
		return
	case err != nil:
		logging.FromContext(r.Context()).Error("change password failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated."})
}

func (h *accountHandlers) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Internal server error.", nil)
}
