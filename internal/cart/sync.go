package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	"github.com/parampare/storefront/internal/store"
	apperrors "github.com/parampare/storefront/pkg/errors"
)

var remoteSyncFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_remote_sync_failures_total",
		Help: "Remote cart calls that failed and were abandoned in favor of local state",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(remoteSyncFailures)
}

// Config holds the tunable policy parameters of the synchronizer.
type Config struct {
	// MaxQuantity caps the quantity of a single line.
	MaxQuantity int

	// ReconcileDelay is how long a cart-updated notification waits before
	// re-fetching remote state, giving the just-issued mutation time to land
	// server-side. A race-avoidance heuristic, not a guarantee.
	ReconcileDelay time.Duration
}

// DefaultConfig returns the storefront's stock policy values.
func DefaultConfig() Config {
	return Config{
		MaxQuantity:    DefaultMaxQuantity,
		ReconcileDelay: 100 * time.Millisecond,
	}
}

// AddInput carries the denormalized product fields an add operation needs.
type AddInput struct {
	ID            string
	Name          string
	Image         string
	Price         int64
	OriginalPrice int64
}

// Synchronizer keeps the local cart and the remote cart converged.
//
// Every mutation writes the local store first (optimistic), publishes a
// cart-updated event, and then (only when a session exists) issues the
// matching remote call best-effort. Remote failures are logged and swallowed;
// the optimistic local state is the fallback of record.
type Synchronizer struct {
	store  store.Store
	gw     *gateway.Client
	sess   *session.Session
	logger *slog.Logger
	cfg    Config

	mu    sync.Mutex
	items Items
}

// NewSynchronizer creates a cart synchronizer.
func NewSynchronizer(st store.Store, gw *gateway.Client, sess *session.Session, logger *slog.Logger, cfg Config) *Synchronizer {
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = DefaultMaxQuantity
	}
	return &Synchronizer{
		store:  st,
		gw:     gw,
		sess:   sess,
		logger: logger,
		cfg:    cfg,
	}
}

// Start subscribes to the notifications that should trigger a reconciling
// re-load (cart mutations, login, external storage changes) and returns a
// stop func. The re-load is deferred by ReconcileDelay.
func (s *Synchronizer) Start(ctx context.Context) (stop func()) {
	refresh := func(session.Event) {
		time.AfterFunc(s.cfg.ReconcileDelay, func() {
			if ctx.Err() != nil {
				return
			}
			s.Load(ctx)
		})
	}

	bus := s.sess.Bus()
	unsubs := []func(){
		bus.Subscribe(session.TopicCartUpdated, refresh),
		bus.Subscribe(session.TopicLogin, refresh),
		bus.Subscribe(session.TopicStorageChanged, refresh),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Load resolves the current cart. Guests read the local store; authenticated
// sessions fetch the remote cart and mirror it locally, falling back to the
// last local snapshot when the fetch fails. Load never publishes events.
func (s *Synchronizer) Load(ctx context.Context) Items {
	if !s.sess.IsLoggedIn(ctx) {
		return s.setItems(s.loadLocal(ctx))
	}

	var envelope remoteCartEnvelope
	if err := s.gw.Get(ctx, "/cart", nil, &envelope); err != nil {
		remoteSyncFailures.WithLabelValues("load").Inc()
		s.logger.ErrorContext(ctx, "fetch cart failed, using local snapshot",
			slog.String("error", err.Error()),
		)
		return s.setItems(s.loadLocal(ctx))
	}

	items := envelope.items()
	if err := s.store.Set(ctx, store.KeyCart, items); err != nil {
		s.logger.ErrorContext(ctx, "mirror cart to local store failed",
			slog.String("error", err.Error()),
		)
	}
	return s.setItems(items)
}

// Add merges the product into the cart. An existing line's quantity is
// clamped at MaxQuantity; a new line's quantity is clamped the same way, so
// repeated adds of one product always converge on min(total, MaxQuantity).
func (s *Synchronizer) Add(ctx context.Context, p AddInput, quantity int) error {
	if p.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}

	items := s.loadLocal(ctx)
	if i := items.FindIndex(p.ID); i >= 0 {
		items[i].Quantity = min(items[i].Quantity+quantity, s.cfg.MaxQuantity)
	} else {
		items = append(items, Item{
			ID:            p.ID,
			Name:          p.Name,
			Image:         p.Image,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Quantity:      min(quantity, s.cfg.MaxQuantity),
		})
	}

	if err := s.commit(ctx, items); err != nil {
		return err
	}

	if s.sess.IsLoggedIn(ctx) {
		body := map[string]any{"productId": p.ID, "quantity": quantity}
		if err := s.gw.Post(ctx, "/cart/add", body, nil); err != nil {
			remoteSyncFailures.WithLabelValues("add").Inc()
			s.logger.ErrorContext(ctx, "remote cart add failed",
				slog.String("product_id", p.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// Remove deletes the line with the given product id.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	items := s.loadLocal(ctx)
	i := items.FindIndex(id)
	if i >= 0 {
		items = append(items[:i], items[i+1:]...)
	}

	if err := s.commit(ctx, items); err != nil {
		return err
	}

	if s.sess.IsLoggedIn(ctx) {
		body := map[string]any{"productId": id}
		if err := s.gw.Delete(ctx, "/cart/remove", body, nil); err != nil {
			remoteSyncFailures.WithLabelValues("remove").Inc()
			s.logger.ErrorContext(ctx, "remote cart remove failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities outside
// [1, MaxQuantity] are rejected without touching stored state.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 || quantity > s.cfg.MaxQuantity {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", s.cfg.MaxQuantity))
	}

	items := s.loadLocal(ctx)
	i := items.FindIndex(id)
	if i < 0 {
		return apperrors.NotFound("cart item", id)
	}
	items[i].Quantity = quantity

	if err := s.commit(ctx, items); err != nil {
		return err
	}

	if s.sess.IsLoggedIn(ctx) {
		body := map[string]any{"productId": id, "quantity": quantity}
		if err := s.gw.Put(ctx, "/cart/update", body, nil); err != nil {
			remoteSyncFailures.WithLabelValues("update").Inc()
			s.logger.ErrorContext(ctx, "remote cart update failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// Clear empties the cart locally. Used on checkout completion and logout.
func (s *Synchronizer) Clear(ctx context.Context) error {
	return s.commit(ctx, Items{})
}

// Items returns the last resolved snapshot.
func (s *Synchronizer) Items() Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Count returns the number of distinct lines in the last resolved snapshot.
func (s *Synchronizer) Count() int { return s.Items().Count() }

// Subtotal returns the subtotal of the last resolved snapshot.
func (s *Synchronizer) Subtotal() int64 { return s.Items().Subtotal() }

// commit writes items to the local store, updates the in-memory snapshot,
// and broadcasts the change.
func (s *Synchronizer) commit(ctx context.Context, items Items) error {
	if err := s.store.Set(ctx, store.KeyCart, items); err != nil {
		return apperrors.Wrap(err, "write cart")
	}
	s.setItems(items)
	s.sess.Bus().Publish(session.Event{Topic: session.TopicCartUpdated})
	return nil
}

func (s *Synchronizer) loadLocal(ctx context.Context) Items {
	items := Items{}
	if err := store.GetOr(ctx, s.store, store.KeyCart, &items); err != nil {
		s.logger.ErrorContext(ctx, "read local cart failed",
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

// remoteCartEnvelope defends against the backend's response shapes: the line
// list may sit at data.items or at the top-level items field, and each line
// may embed the full product document or carry flat denormalized fields.
type remoteCartEnvelope struct {
	Data *struct {
		Items []remoteCartLine `json:"items"`
	} `json:"data"`
	Items []remoteCartLine `json:"items"`
}

func (e remoteCartEnvelope) items() Items {
	var lines []remoteCartLine
	switch {
	case e.Data != nil && e.Data.Items != nil:
		lines = e.Data.Items
	case e.Items != nil:
		lines = e.Items
	}

	items := make(Items, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.item())
	}
	return items
}

type remoteCartLine struct {
	Product       json.RawMessage `json:"product"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Price         int64           `json:"price"`
	OriginalPrice int64           `json:"originalPrice"`
	Quantity      int             `json:"quantity"`
}

type remoteProductDoc struct {
	MongoID       string   `json:"_id"`
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Images        []string `json:"images"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"originalPrice"`
}

// item maps a remote line to a cart Item, preferring embedded product fields
// over the flat ones. The product field may be a document or a bare id.
func (l remoteCartLine) item() Item {
	item := Item{
		ID:            l.ProductID,
		Name:          l.Name,
		Image:         l.Image,
		Price:         l.Price,
		OriginalPrice: l.OriginalPrice,
		Quantity:      l.Quantity,
	}

	if len(l.Product) == 0 {
		return item
	}

	var doc remoteProductDoc
	if err := json.Unmarshal(l.Product, &doc); err == nil && (doc.MongoID != "" || doc.ID != "") {
		if doc.MongoID != "" {
			item.ID = doc.MongoID
		} else {
			item.ID = doc.ID
		}
		if doc.Name != "" {
			item.Name = doc.Name
		}
		if len(doc.Images) > 0 {
			item.Image = doc.Images[0]
		}
		if doc.Price != 0 {
			item.Price = doc.Price
		}
		if doc.OriginalPrice != 0 {
			item.OriginalPrice = doc.OriginalPrice
		}
		return item
	}

	var id string
	if err := json.Unmarshal(l.Product, &id); err == nil && id != "" {
		item.ID = id
	}
	return item
}
