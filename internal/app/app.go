// Package app wires the storefront client together: local store, session,
// bus, gateway, synchronizers, catalog, checkout, and the optional debug
// listener.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/parampare/storefront/internal/account"
	"github.com/parampare/storefront/internal/cart"
	"github.com/parampare/storefront/internal/catalog"
	"github.com/parampare/storefront/internal/chat"
	"github.com/parampare/storefront/internal/checkout"
	"github.com/parampare/storefront/internal/config"
	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	"github.com/parampare/storefront/internal/store"
	filestore "github.com/parampare/storefront/internal/store/file"
	memorystore "github.com/parampare/storefront/internal/store/memory"
	redisstore "github.com/parampare/storefront/internal/store/redis"
	"github.com/parampare/storefront/internal/wishlist"
	"github.com/parampare/storefront/pkg/health"
	"github.com/parampare/storefront/pkg/httpclient"
)

// App holds the wired storefront client.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	rdb    *redis.Client

	Store     store.Store
	Session   *session.Session
	Gateway   *gateway.Client
	Cart      *cart.Synchronizer
	Wishlist  *wishlist.Synchronizer
	Catalog   *catalog.Browser
	Account   *account.Service
	Checkout  *checkout.Service
	Addresses *checkout.AddressBook
	Chat      *chat.History
}

// New creates an application instance, initializing all dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	st, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Store = st

	bus := session.NewBus()
	a.Session = session.New(st, bus, logger)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout()
	httpCfg.MaxRetries = cfg.HTTPMaxRetries
	base := httpclient.New(httpCfg)
	breaker := httpclient.NewCircuitBreakerClient(
		base,
		httpclient.DefaultCircuitBreakerConfig("storefront-api"),
		logger,
	)
	a.Gateway = gateway.New(cfg.APIBaseURL, breaker, a.Session, logger)

	a.Cart = cart.NewSynchronizer(st, a.Gateway, a.Session, logger, cart.Config{
		MaxQuantity:    cfg.MaxQuantity,
		ReconcileDelay: cfg.ReconcileDelay(),
	})
	a.Wishlist = wishlist.NewSynchronizer(st, a.Gateway, a.Session, logger, wishlist.Config{
		FetchWindow: cfg.WishlistFetchWindow(),
	})
	a.Catalog = catalog.NewBrowser(a.Gateway, logger)
	a.Account = account.NewService(a.Gateway, a.Session, logger)

	a.Addresses = checkout.NewAddressBook(st, logger)
	a.Checkout = checkout.NewService(a.Gateway, a.Session, st, a.Cart, a.Addresses, logger)

	// Chat history is session-scoped regardless of the durable backend.
	a.Chat = chat.NewHistory(memorystore.New())

	return a, nil
}

func (a *App) openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StateBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("using redis state backend", slog.String("addr", cfg.RedisAddr))
		return redisstore.New(rdb), nil

	default:
		path, err := cfg.ResolveStatePath()
		if err != nil {
			return nil, err
		}
		st, err := filestore.Open(path)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("using file state backend", slog.String("path", path))
		return st, nil
	}
}

// Run starts the bus-driven reconcilers and, when configured, the debug
// listener. It blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	stopCart := a.Cart.Start(ctx)
	defer stopCart()

	// Prime both collections so the first event has a baseline to reconcile.
	a.Cart.Load(ctx)
	a.Wishlist.Load(ctx)

	if a.cfg.DebugAddr == "" {
		<-ctx.Done()
		return nil
	}

	healthHandler := health.NewHandler()
	if a.rdb != nil {
		rdb := a.rdb
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	healthHandler.Register("backend", func(ctx context.Context) error {
		_, err := a.Catalog.Categories(ctx)
		return err
	})

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		promhttp.Handler().ServeHTTP(w, req)
	})

	srv := &http.Server{
		Addr:         a.cfg.DebugAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("debug listener started", slog.String("addr", a.cfg.DebugAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("debug listener: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("debug listener shutdown: %w", err)
	}
	return nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}
