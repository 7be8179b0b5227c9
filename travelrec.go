// Package travelrec assembles the Travel Recommendation server: storage,
// auth, the chat engine, the Inertia renderer and the HTTP router.
package travelrec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/popalexr/Travel-Recommendation/frontend"
	"github.com/popalexr/Travel-Recommendation/internal/account"
	httpadapter "github.com/popalexr/Travel-Recommendation/internal/adapters/http"
	"github.com/popalexr/Travel-Recommendation/internal/assets"
	"github.com/popalexr/Travel-Recommendation/internal/auth"
	"github.com/popalexr/Travel-Recommendation/internal/chat"
	"github.com/popalexr/Travel-Recommendation/internal/config"
	"github.com/popalexr/Travel-Recommendation/internal/devreload"
	"github.com/popalexr/Travel-Recommendation/internal/geo"
	"github.com/popalexr/Travel-Recommendation/internal/inertia"
	"github.com/popalexr/Travel-Recommendation/internal/llm"
	"github.com/popalexr/Travel-Recommendation/internal/pages"
	"github.com/popalexr/Travel-Recommendation/internal/store"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger

	db       *store.DB
	assets   *assets.Store
	resolver *pages.Resolver
	accounts *account.Service
	handler  http.Handler

	janitor *auth.Janitor
	reload  *devreload.Broker
}

type options struct {
	dist   fs.FS
	llm    llm.Client
	logger *zap.Logger
}

type Option func(*options)

// WithDist serves the front-end build from fsys instead of the embedded or
// on-disk output.
func WithDist(fsys fs.FS) Option {
	return func(o *options) { o.dist = fsys }
}

// WithLLM replaces the provider client built from the configuration.
func WithLLM(client llm.Client) Option {
	return func(o *options) { o.llm = client }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New opens and migrates the database and wires every service.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	dist, err := distFS(cfg, o.dist)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if n, err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	} else if n > 0 {
		logger.Info("database migrated", zap.Int("applied", n))
	}

	client := o.llm
	if client == nil {
		p := cfg.Provider()
		client, err = llm.New(llm.Options{
			Provider: cfg.LLM.Provider,
			APIKey:   p.APIKey,
			Model:    p.Model,
			BaseURL:  p.BaseURL,
			Timeout:  cfg.LLMTimeout(),
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	a := &App{cfg: cfg, logger: logger, db: db}

	a.assets = assets.NewStore(dist, assets.WithVersion(cfg.Frontend.AssetVersion))
	if err := a.assets.Reload(); err != nil {
		logger.Warn("vite manifest not loaded", zap.Error(err))
	}
	a.resolver = pages.NewResolver(pages.Generated(a.assets), pages.FallbackLayout(a.assets),
		pages.WithManifest(a.assets))

	sessions := auth.NewService(store.NewSessions(db), auth.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL()))
	a.janitor, err = auth.NewJanitor(sessions, cfg.Auth.CleanupSchedule, logger.Named("janitor"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.accounts = account.NewService(store.NewUsers(db))
	chats := chat.NewService(store.NewChats(db), store.NewMessages(db), store.NewProfiles(db), client,
		chat.WithLogger(logger.Named("chat")),
		chat.WithMaxUploadBytes(cfg.Uploads.MaxBytes))
	geocoder := geo.New(geo.Options{
		Token:       cfg.Geocoding.MapboxAPIKey,
		BaseURL:     cfg.Geocoding.BaseURL,
		CacheTTL:    cfg.GeocodeCacheTTL(),
		Concurrency: cfg.Geocoding.Concurrency,
		Logger:      logger.Named("geo"),
	})

	if cfg.Server.Dev {
		a.reload = devreload.NewBroker()
	}

	renderer := inertia.New(a.resolver, a.assets,
		inertia.WithTitle(cfg.Frontend.Title),
		inertia.WithDev(cfg.Server.Dev),
		inertia.WithShared(a.sharedAuth),
		inertia.WithLogger(logger.Named("inertia")))

	a.handler = httpadapter.NewRouter(httpadapter.Deps{
		Logger:   logger,
		Renderer: renderer,
		Accounts: a.accounts,
		Sessions: sessions,
		Cookies:  auth.Cookies{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		Guard:    auth.DefaultGuard(),
		Chats:    chats,
		Geocoder: geocoder,
		Assets:   dist,
		Dev:      cfg.Server.Dev,
		Reload:   a.reload,
	})
	return a, nil
}

// distFS picks the build output: an explicit override, the directory on disk
// in dev mode, or the embedded copy.
func distFS(cfg *config.Config, override fs.FS) (fs.FS, error) {
	if override != nil {
		return override, nil
	}
	if cfg.Server.Dev {
		if err := os.MkdirAll(cfg.Frontend.DistDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", cfg.Frontend.DistDir, err)
		}
		return os.DirFS(cfg.Frontend.DistDir), nil
	}
	return frontend.Dist()
}

// sharedAuth exposes the signed-in user to every page as auth.user.
func (a *App) sharedAuth(ctx context.Context) inertia.Props {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return inertia.Props{"auth": map[string]any{"user": nil}}
	}
	p, err := a.accounts.Profile(ctx, id.UserID)
	if err != nil {
		a.logger.Warn("load shared user failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return inertia.Props{"auth": map[string]any{"user": nil}}
	}
	return inertia.Props{"auth": map[string]any{"user": p}}
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Resolver() *pages.Resolver { return a.resolver }

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        a.cfg.Server.Addr,
		Handler:     a.handler,
		ReadTimeout: a.cfg.ReadTimeout(),
	}

	a.janitor.Start()
	defer a.janitor.Stop()

	if a.reload != nil {
		w, err := devreload.NewWatcher(a.cfg.Frontend.DistDir, 0, a.distChanged, a.logger.Named("devreload"))
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", a.cfg.Frontend.DistDir, err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch %s: %w", a.cfg.Frontend.DistDir, err)
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", srv.Addr), zap.Bool("dev", a.cfg.Server.Dev))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) distChanged() {
	if err := a.assets.Reload(); err != nil {
		a.logger.Warn("reload vite manifest failed", zap.Error(err))
	}
	a.logger.Debug("front-end rebuilt", zap.String("version", a.assets.Version()))
	a.reload.Notify()
}

func (a *App) Close() error {
	return a.db.Close()
}

