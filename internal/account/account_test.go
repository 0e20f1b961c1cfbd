package account

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	memorystore "github.com/parampare/storefront/internal/store/memory"
	apperrors "github.com/parampare/storefront/pkg/errors"
	"github.com/parampare/storefront/pkg/httpclient"
	pkgvalidator "github.com/parampare/storefront/pkg/validator"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(memorystore.New(), session.NewBus(), logger)
	gw := gateway.New(srv.URL, httpclient.New(httpclient.DefaultConfig()), sess, logger)
	return NewService(gw, sess, logger), sess
}

func TestLoginEstablishesSession(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"token":"tok-123","user":{"id":"u1","name":"Meera","email":"meera@example.com"}}`))
	})
	svc, sess := newTestService(t, r)
	ctx := context.Background()

	logins := 0
	sess.Bus().Subscribe(session.TopicLogin, func(session.Event) { logins++ })

	user, err := svc.Login(ctx, LoginInput{Email: "meera@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NotNil(t, user)
	assert.Equal(t, "Meera", user.Name)
	assert.True(t, sess.IsLoggedIn(ctx))
	assert.Equal(t, "tok-123", sess.Token(ctx))
	assert.Equal(t, 1, logins)
}

func TestLoginAcceptsDataEnvelope(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"data":{"token":"tok-456","user":{"id":"u1","name":"Meera"}}}`))
	})
	svc, sess := newTestService(t, r)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Email: "meera@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok-456", sess.Token(ctx))
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	})
	svc, _ := newTestService(t, r)

	_, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	var verr *pkgvalidator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "Email")
	assert.Contains(t, verr.Fields(), "Password")
	assert.EqualValues(t, 0, calls.Load())
}

func TestLoginWithoutTokenFails(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	svc, sess := newTestService(t, r)

	_, err := svc.Login(context.Background(), LoginInput{Email: "meera@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.False(t, sess.IsLoggedIn(context.Background()))
}

func TestLoginBadCredentials(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"invalid credentials"}`))
	})
	svc, _ := newTestService(t, r)

	_, err := svc.Login(context.Background(), LoginInput{Email: "meera@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegisterValidatesMobile(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/auth/register", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success":true}`))
	})
	svc, _ := newTestService(t, r)
	ctx := context.Background()

	err := svc.Register(ctx, RegisterInput{Name: "Meera", Email: "meera@example.com", Password: "secret123", Mobile: "12345"})
	require.Error(t, err)
	assert.EqualValues(t, 0, calls.Load())

	err = svc.Register(ctx, RegisterInput{Name: "Meera", Email: "meera@example.com", Password: "secret123", Mobile: "9876543210"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/register", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	svc, sess := newTestService(t, r)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, RegisterInput{Name: "Meera", Email: "meera@example.com", Password: "secret123", Mobile: "9876543210"}))
	assert.False(t, sess.IsLoggedIn(ctx))
}

func TestSendOTP(t *testing.T) {
	var gotBody []byte
	r := chi.NewRouter()
	r.Post("/api/auth/send-otp", func(w http.ResponseWriter, req *http.Request) {
		gotBody, _ = io.ReadAll(req.Body)
		w.Write([]byte(`{"success":true}`))
	})
	svc, _ := newTestService(t, r)

	require.NoError(t, svc.SendOTP(context.Background(), "9876543210", "register"))
	assert.JSONEq(t, `{"mobile":"9876543210","type":"register"}`, string(gotBody))

	err := svc.SendOTP(context.Background(), "12x", "register")
	assert.Error(t, err)
}

func TestUserDetailsRefreshesCachedProfile(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/auth/userDetails", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{"user":{"id":"u1","name":"Meera R","email":"meera@example.com"}}`))
	})
	svc, sess := newTestService(t, r)
	ctx := context.Background()

	require.NoError(t, sess.Establish(ctx, "tok", &session.User{ID: "u1", Name: "Meera"}))

	logins := 0
	sess.Bus().Subscribe(session.TopicLogin, func(session.Event) { logins++ })

	user, err := svc.UserDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Meera R", user.Name)

	// The cached profile is refreshed without a second login event.
	assert.Equal(t, "Meera R", sess.User(ctx).Name)
	assert.Equal(t, 0, logins)
}

func TestUserDetailsRequiresSession(t *testing.T) {
	svc, _ := newTestService(t, chi.NewRouter())

	_, err := svc.UserDetails(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, sess := newTestService(t, chi.NewRouter())
	ctx := context.Background()

	require.NoError(t, sess.Establish(ctx, "tok", nil))
	require.NoError(t, svc.Logout(ctx))
	assert.False(t, sess.IsLoggedIn(ctx))
}
