// Package http wires the Inertia pages and the JSON APIs onto a chi router.
package http

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/internal/account"
	"github.com/popalexr/Travel-Recommendation/internal/auth"
	"github.com/popalexr/Travel-Recommendation/internal/chat"
	"github.com/popalexr/Travel-Recommendation/internal/devreload"
	"github.com/popalexr/Travel-Recommendation/internal/geo"
	"github.com/popalexr/Travel-Recommendation/internal/inertia"
)

// Deps are the services the router dispatches to. Reload is only set in
// dev mode.
type Deps struct {
	Logger   *zap.Logger
	Renderer *inertia.Renderer
	Accounts *account.Service
	Sessions *auth.Service
	Cookies  auth.Cookies
	Guard    auth.Guard
	Chats    *chat.Service
	Geocoder *geo.Geocoder
	Assets   fs.FS
	Dev      bool
	Reload   *devreload.Broker
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(d.Sessions, d.Cookies))
	r.Use(d.Guard.Middleware)

	assets := NewAssetHandler(d.Assets, d.Dev)
	r.Handle("/assets/*", assets)
	if d.Reload != nil {
		r.Handle(devreload.Path, d.Reload)
	}

	ah := &accountHandlers{accounts: d.Accounts, sessions: d.Sessions, cookies: d.Cookies}
	r.Post("/register", ah.register)
	r.Post("/login", ah.login)
	r.Post("/logout", ah.logout)

	user := func(req *http.Request) (inertia.Props, error) {
		p, err := d.Accounts.Profile(req.Context(), userID(req))
		if err != nil {
			return nil, err
		}
		return inertia.Props{"user": p}, nil
	}
	r.Method(http.MethodGet, "/", NewPageHandler(d.Renderer, "Welcome", nil))
	r.Method(http.MethodGet, "/login", NewPageHandler(d.Renderer, "Auth", fixedProps(inertia.Props{"initialTab": "login"})))
	r.Method(http.MethodGet, "/register", NewPageHandler(d.Renderer, "Auth", fixedProps(inertia.Props{"initialTab": "register"})))
	r.Method(http.MethodGet, "/dashboard", NewPageHandler(d.Renderer, "Dashboard", user))
	r.Method(http.MethodGet, "/settings", NewPageHandler(d.Renderer, "Settings", user))

	ch := &chatHandlers{chats: d.Chats}
	gh := &geoHandler{geocoder: d.Geocoder}
	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/settings/profile", ah.updateProfile)
		r.Post("/settings/password", ah.changePassword)

		r.Get("/dashboard", ch.dashboard)
		r.Post("/geocode", gh.ServeHTTP)

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", ch.send)
			r.Post("/stream", ch.stream)
			r.Post("/upload-ticket", ch.upload(chat.Ticket))
			r.Post("/upload-accommodation", ch.upload(chat.Accommodation))
			r.Post("/upload-document", ch.upload(chat.OtherDocument))
			r.Post("/edit-latest", ch.editLatest)
			r.Post("/regenerate", ch.regenerate)
			r.Delete("/{chatID}", ch.delete)
			r.Get("/{chatID}/messages", ch.messages)
			r.Get("/{chatID}/profile", ch.profile)
			r.Post("/{chatID}/profile", ch.saveProfile)
		})
	})

	r.NotFound(assets.Fallback(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		d.Renderer.Error(w, http.StatusNotFound, nil)
	})).ServeHTTP)
	return r
}
