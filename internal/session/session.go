// Package session owns session identity (auth token plus logged-in flag) and
// the notification bus the synchronizers coordinate over.
//
// Identity is written by the login/logout flow and treated as read-only by
// everything else; the cart and wishlist synchronizers only ever ask
// IsLoggedIn and Token.
package session

import (
	"context"
	"log/slog"

	"github.com/parampare/storefront/internal/store"
)

// User is the account profile cached in the local store after login.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile,omitempty"`
}

// Session reads and writes session identity in the local store.
type Session struct {
	store  store.Store
	bus    *Bus
	logger *slog.Logger
}

// New creates a session manager over the given store and bus.
func New(st store.Store, bus *Bus, logger *slog.Logger) *Session {
	return &Session{store: st, bus: bus, logger: logger}
}

// Bus returns the notification bus this session owns.
func (s *Session) Bus() *Bus { return s.bus }

// Token returns the stored auth token, or "" if none.
func (s *Session) Token(ctx context.Context) string {
	var token string
	if err := s.store.Get(ctx, store.KeyToken, &token); err != nil {
		return ""
	}
	return token
}

// IsLoggedIn reports whether a token is present and the logged-in flag is set.
// Both are required; a token alone does not count.
func (s *Session) IsLoggedIn(ctx context.Context) bool {
	if s.Token(ctx) == "" {
		return false
	}
	var flag bool
	if err := s.store.Get(ctx, store.KeyIsLoggedIn, &flag); err != nil {
		return false
	}
	return flag
}

// User returns the cached account profile, or nil if none is stored.
func (s *Session) User(ctx context.Context) *User {
	var u User
	if err := s.store.Get(ctx, store.KeyUser, &u); err != nil {
		return nil
	}
	return &u
}

// Establish stores the token, flag, and profile for a fresh login and
// publishes a login event so mounted views re-sync against the remote state.
func (s *Session) Establish(ctx context.Context, token string, user *User) error {
	if err := s.store.Set(ctx, store.KeyToken, token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.KeyIsLoggedIn, true); err != nil {
		return err
	}
	if user != nil {
		if err := s.store.Set(ctx, store.KeyUser, user); err != nil {
			return err
		}
	}

	s.bus.Publish(Event{Topic: TopicLogin})
	return nil
}

// UpdateUser refreshes the cached profile without touching the token or
// publishing events.
func (s *Session) UpdateUser(ctx context.Context, user *User) error {
	return s.store.Set(ctx, store.KeyUser, user)
}

// Purge clears the token, flag, and profile. This is the 401 path: the
// session is silently dropped and no event is published; what to do next
// (redirect, prompt) is the caller's decision.
func (s *Session) Purge(ctx context.Context) {
	if err := s.store.Delete(ctx, store.KeyToken, store.KeyIsLoggedIn, store.KeyUser); err != nil {
		s.logger.ErrorContext(ctx, "failed to purge session", slog.String("error", err.Error()))
	}
}

// Logout clears session identity and the per-user collections (cart,
// wishlist), then notifies subscribers.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx,
		store.KeyToken,
		store.KeyIsLoggedIn,
		store.KeyUser,
		store.KeyCart,
		store.KeyWishlist,
	); err != nil {
		return err
	}

	s.bus.Publish(Event{Topic: TopicCartUpdated})
	s.bus.Publish(Event{Topic: TopicWishlistUpdated})
	s.bus.Publish(Event{Topic: TopicLogout})
	return nil
}
