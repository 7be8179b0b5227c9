package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/logging"
)

// Cookies writes and clears the session cookie.
type Cookies struct {
	Name   string
	Secure bool
}

func (c Cookies) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ExtractToken checks the Authorization header first, then the cookie.
func (c Cookies) ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t
		}
	}
	if cookie, err := r.Cookie(c.Name); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware attaches the Identity of a valid token to the request context.
// Requests without one pass through unchanged.
func Middleware(svc *Service, cookies Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("ignoring session token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Guard rules: authenticated paths turn anonymous visitors away; guest paths
// turn signed-in users away.
type Guard struct {
	Authenticated []string
	Guest         []string
	LoginPath     string
	HomePath      string
}

func DefaultGuard() Guard {
	return Guard{
		Authenticated: []string{"/dashboard", "/dashboard/*", "/settings", "/logout", "/api/dashboard"},
		Guest:         []string{"/", "/login", "/register"},
		LoginPath:     "/login",
		HomePath:      "/dashboard",
	}
}

func (g Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn := IdentityFrom(r.Context())

		switch {
		case !signedIn && matchAny(g.Authenticated, r.URL.Path):
			if WantsJSON(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication required."})
				return
			}
			http.Redirect(w, r, g.LoginPath, http.StatusFound)
			return

		case signedIn && matchAny(g.Guest, r.URL.Path):
			if WantsJSON(r) {
				writeJSON(w, http.StatusConflict, map[string]string{"message": "Already authenticated."})
				return
			}
			http.Redirect(w, r, g.HomePath, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WantsJSON reports whether the client sent or expects JSON.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// matchAny supports exact paths and a trailing "/*" for any sub-path.
func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if p == path {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
