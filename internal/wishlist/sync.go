package wishlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	"github.com/parampare/storefront/internal/store"
	apperrors "github.com/parampare/storefront/pkg/errors"
)

var (
	remoteSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_wishlist_remote_sync_failures_total",
			Help: "Remote wishlist calls that failed and were abandoned in favor of local state",
		},
		[]string{"op"},
	)

	fetchesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_wishlist_fetches_skipped_total",
			Help: "Wishlist fetches answered from the shared cache because of the rate-limit window or an in-flight fetch",
		},
	)
)

func init() {
	prometheus.MustRegister(remoteSyncFailures, fetchesSkipped)
}

// Config holds the tunable policy parameters of the synchronizer.
type Config struct {
	// FetchWindow rate-limits remote fetches: at most one per rolling window.
	// Consumers asking inside the window get the shared cached collection.
	FetchWindow time.Duration
}

// DefaultConfig returns the storefront's stock policy values.
func DefaultConfig() Config {
	return Config{FetchWindow: time.Second}
}

// Synchronizer keeps the local wishlist and the remote wishlist converged.
//
// The resolved collection is held in one shared cache; consumers that need to
// stay current subscribe to wishlist-updated events on the bus rather than
// polling. A boolean in-flight guard prevents overlapping fetches.
type Synchronizer struct {
	store  store.Store
	gw     *gateway.Client
	sess   *session.Session
	logger *slog.Logger
	cfg    Config

	mu        sync.Mutex
	items     Items
	lastFetch time.Time
	fetching  bool
}

// NewSynchronizer creates a wishlist synchronizer.
func NewSynchronizer(st store.Store, gw *gateway.Client, sess *session.Session, logger *slog.Logger, cfg Config) *Synchronizer {
	if cfg.FetchWindow <= 0 {
		cfg.FetchWindow = time.Second
	}
	return &Synchronizer{
		store:  st,
		gw:     gw,
		sess:   sess,
		logger: logger,
		cfg:    cfg,
	}
}

// Load resolves the current wishlist. Guests read the local store.
// Authenticated sessions fetch the remote collection and mirror it locally,
// unless a fetch ran inside the rate-limit window or is still in flight, in
// which case the shared cached collection is returned. Remote failures fall
// back to the last local snapshot. Load never publishes events.
func (s *Synchronizer) Load(ctx context.Context) Items {
	if !s.sess.IsLoggedIn(ctx) {
		return s.setItems(s.loadLocal(ctx))
	}

	s.mu.Lock()
	if s.fetching || time.Since(s.lastFetch) < s.cfg.FetchWindow {
		cached := s.items.Clone()
		s.mu.Unlock()
		fetchesSkipped.Inc()
		return cached
	}
	s.fetching = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.fetching = false
		s.lastFetch = time.Now()
		s.mu.Unlock()
	}()

	var raw json.RawMessage
	if err := s.gw.Get(ctx, "/wishlist", nil, &raw); err != nil {
		remoteSyncFailures.WithLabelValues("load").Inc()
		s.logger.ErrorContext(ctx, "fetch wishlist failed, using local snapshot",
			slog.String("error", err.Error()),
		)
		return s.setItems(s.loadLocal(ctx))
	}

	items, ok := extractCollection(raw)
	if !ok {
		s.logger.WarnContext(ctx, "unrecognized wishlist response shape, using local snapshot")
		return s.setItems(s.loadLocal(ctx))
	}

	s.mirror(ctx, items)
	return s.setItems(items)
}

// Contains reports membership in the shared cached collection.
func (s *Synchronizer) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Contains(id)
}

// Items returns the shared cached collection.
func (s *Synchronizer) Items() Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Count returns the size of the shared cached collection.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Add inserts the item, writes locally, broadcasts, and best-effort syncs the
// remote wishlist. Adding an item already present is a no-op.
func (s *Synchronizer) Add(ctx context.Context, item Item) error {
	if item.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	items := s.loadLocal(ctx)
	if !items.Contains(item.ID) {
		items = append(items, item)
	}
	if err := s.commit(ctx, items); err != nil {
		return err
	}

	s.syncRemote(ctx, "add", item.ID)
	return nil
}

// Remove deletes the item with the given product id, writes locally,
// broadcasts, and best-effort syncs the remote wishlist.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	items := s.loadLocal(ctx)
	if i := items.FindIndex(id); i >= 0 {
		items = append(items[:i], items[i+1:]...)
	}
	if err := s.commit(ctx, items); err != nil {
		return err
	}

	s.syncRemote(ctx, "remove", id)
	return nil
}

// Toggle flips membership of the item and reports whether it is now present.
// Toggle is its own inverse, and each call publishes exactly one
// wishlist-updated event.
func (s *Synchronizer) Toggle(ctx context.Context, item Item) (added bool, err error) {
	if item.ID == "" {
		return false, apperrors.InvalidInput("product id is required")
	}

	items := s.loadLocal(ctx)
	if i := items.FindIndex(item.ID); i >= 0 {
		items = append(items[:i], items[i+1:]...)
		added = false
	} else {
		items = append(items, item)
		added = true
	}
	if err := s.commit(ctx, items); err != nil {
		return false, err
	}

	s.syncRemote(ctx, "toggle", item.ID)
	return added, nil
}

// syncRemote issues the remote wishlist mutation when a session exists. When
// the response embeds the authoritative collection it replaces local state
// entirely rather than merely confirming the optimistic write.
func (s *Synchronizer) syncRemote(ctx context.Context, op, productID string) {
	if !s.sess.IsLoggedIn(ctx) {
		return
	}

	body := map[string]any{"productId": productID}
	var raw json.RawMessage
	var err error
	switch op {
	case "add":
		err = s.gw.Post(ctx, "/wishlist/add", body, &raw)
	case "remove":
		err = s.gw.Delete(ctx, "/wishlist/remove", body, &raw)
	case "toggle":
		err = s.gw.Post(ctx, "/wishlist/toggle", body, &raw)
	}
	if err != nil {
		remoteSyncFailures.WithLabelValues(op).Inc()
		s.logger.ErrorContext(ctx, "remote wishlist sync failed",
			slog.String("op", op),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return
	}

	if items, ok := extractCollection(raw); ok {
		s.mirror(ctx, items)
		s.setItems(items)
	}
}

// commit writes items to the local store, updates the shared cache, and
// broadcasts the change.
func (s *Synchronizer) commit(ctx context.Context, items Items) error {
	if err := s.store.Set(ctx, store.KeyWishlist, items); err != nil {
		return apperrors.Wrap(err, "write wishlist")
	}
	s.setItems(items)
	s.sess.Bus().Publish(session.Event{Topic: session.TopicWishlistUpdated})
	return nil
}

func (s *Synchronizer) mirror(ctx context.Context, items Items) {
	if err := s.store.Set(ctx, store.KeyWishlist, items); err != nil {
		s.logger.ErrorContext(ctx, "mirror wishlist to local store failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *Synchronizer) loadLocal(ctx context.Context) Items {
	items := Items{}
	if err := store.GetOr(ctx, s.store, store.KeyWishlist, &items); err != nil {
		s.logger.ErrorContext(ctx, "read local wishlist failed",
			slog.String("error", err.Error()),
		)
		return Items{}
	}
	return items
}

func (s *Synchronizer) setItems(items Items) Items {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return items
}
