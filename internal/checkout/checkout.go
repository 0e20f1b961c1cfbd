// Package checkout places orders from the current cart and keeps a local
// order history alongside the saved address book.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parampare/storefront/internal/cart"
	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	"github.com/parampare/storefront/internal/store"
	apperrors "github.com/parampare/storefront/pkg/errors"
)

// Payment methods the storefront offers.
const (
	PaymentCOD = "cod"
	PaymentUPI = "upi"
)

// Order is a placed order as mirrored into the local history.
type Order struct {
	ID              string     `json:"id"`
	Items           cart.Items `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	Total           int64      `json:"total"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Service implements checkout.
type Service struct {
	gw        *gateway.Client
	sess      *session.Session
	store     store.Store
	cart      *cart.Synchronizer
	addresses *AddressBook
	logger    *slog.Logger
}

// NewService creates a checkout service.
func NewService(gw *gateway.Client, sess *session.Session, st store.Store, crt *cart.Synchronizer, addresses *AddressBook, logger *slog.Logger) *Service {
	return &Service{
		gw:        gw,
		sess:      sess,
		store:     st,
		cart:      crt,
		addresses: addresses,
		logger:    logger,
	}
}

// PlaceOrder submits the current cart as an order shipped to the given saved
// address. Authenticated sessions place the order remotely, and a failure there
// aborts the checkout, unlike the best-effort cart sync. The order is then
// mirrored into the local history and the cart is cleared.
func (s *Service) PlaceOrder(ctx context.Context, addressID, paymentMethod string) (*Order, error) {
	if paymentMethod == "" {
		paymentMethod = PaymentCOD
	}

	items := s.cart.Load(ctx)
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	addr, err := s.addresses.Get(ctx, addressID)
	if err != nil {
		return nil, err
	}

	order := Order{
		ID:              uuid.New().String(),
		Items:           items,
		ShippingAddress: *addr,
		PaymentMethod:   paymentMethod,
		Total:           items.Subtotal(),
		Status:          "placed",
		CreatedAt:       time.Now().UTC(),
	}

	if s.sess.IsLoggedIn(ctx) {
		body := map[string]any{
			"items":           items,
			"shippingAddress": addr,
			"paymentMethod":   paymentMethod,
		}
		var resp struct {
			Order *remoteOrder `json:"order"`
			Data  *remoteOrder `json:"data"`
		}
		if err := s.gw.Post(ctx, "/orders", body, &resp); err != nil {
			return nil, apperrors.Wrap(err, "place order")
		}
		if remote := firstOrder(resp.Order, resp.Data); remote != nil {
			if id := remote.id(); id != "" {
				order.ID = id
			}
			if remote.Status != "" {
				order.Status = remote.Status
			}
		}
	}

	if err := s.appendHistory(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to record order locally",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("lines", items.Count()),
		slog.Int64("total", order.Total),
	)
	return &order, nil
}

// Orders returns the local order history, newest first.
func (s *Service) Orders(ctx context.Context) ([]Order, error) {
	orders := []Order{}
	if err := store.GetOr(ctx, s.store, store.KeyOrders, &orders); err != nil {
		return nil, apperrors.Wrap(err, "read orders")
	}
	return orders, nil
}

// Order returns a single order, preferring the backend's copy for
// authenticated sessions and falling back to the local history.
func (s *Service) Order(ctx context.Context, id string) (*Order, error) {
	if s.sess.IsLoggedIn(ctx) {
		var resp struct {
			Order *remoteOrder `json:"order"`
			Data  *remoteOrder `json:"data"`
		}
		err := s.gw.Get(ctx, "/orders/"+id, nil, &resp)
		if err == nil {
			if remote := firstOrder(resp.Order, resp.Data); remote != nil {
				return remote.local(), nil
			}
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "fetch order failed, using local history",
				slog.String("order_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, apperrors.NotFound("order", id)
}

func (s *Service) appendHistory(ctx context.Context, order Order) error {
	orders, err := s.Orders(ctx)
	if err != nil {
		return err
	}
	orders = append([]Order{order}, orders...)
	return s.store.Set(ctx, store.KeyOrders, orders)
}

// remoteOrder tolerates the backend's order serialization (_id, nested totals).
type remoteOrder struct {
	MongoID         string     `json:"_id"`
	ID              string     `json:"id"`
	Items           cart.Items `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
	PaymentMethod   string     `json:"paymentMethod"`
	Total           int64      `json:"total"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func (o *remoteOrder) id() string {
	if o.ID != "" {
		return o.ID
	}
	return o.MongoID
}

func (o *remoteOrder) local() *Order {
	return &Order{
		ID:              o.id(),
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Total:           o.Total,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}

func firstOrder(candidates ...*remoteOrder) *remoteOrder {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
