// Package store defines the persistent local store: a durable key to
// JSON-document mapping that mirrors the browser storage the storefront web
// client keeps its state in. Backends differ in durability scope: the file
// backend survives restarts, the memory backend lives for one session, and
// the redis backend is shared across processes on one host.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Keys persisted by the storefront client. The parampare_ prefixed keys are
// carried over from the web client so a shared redis store can serve both.
const (
	KeyToken           = "token"
	KeyIsLoggedIn      = "isLoggedIn"
	KeyUser            = "parampare_user"
	KeyCart            = "cart"
	KeyWishlist        = "wishlist"
	KeyAddresses       = "addresses"
	KeyLegacyAddresses = "parampare_addresses"
	KeyOrders          = "orders"
	KeyChatHistory     = "parampare_chat_history"
)

// Store is a durable key to JSON mapping. Values are marshaled on Set and
// unmarshaled into dst on Get. There is no eviction policy and no size bound
// beyond what the backend enforces.
type Store interface {
	// Get unmarshals the value stored under key into dst.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string, dst any) error

	// Set marshals value and stores it under key, overwriting any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// GetOr unmarshals the value under key into dst, leaving dst untouched when
// the key is absent. Any other error is returned as-is.
func GetOr(ctx context.Context, s Store, key string, dst any) error {
	err := s.Get(ctx, key, dst)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
