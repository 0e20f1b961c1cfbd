// Package account implements login, registration, OTP dispatch, and profile
// retrieval against the auth endpoints, and owns the login/logout flow that
// writes session identity.
package account

import (
	"context"
	"log/slog"

	"github.com/parampare/storefront/internal/gateway"
	"github.com/parampare/storefront/internal/session"
	apperrors "github.com/parampare/storefront/pkg/errors"
	"github.com/parampare/storefront/pkg/validator"
)

// LoginInput are the login form fields.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput are the registration form fields.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Mobile   string `json:"mobile" validate:"required,len=10,numeric"`
}

// Service implements the account flows.
type Service struct {
	gw     *gateway.Client
	sess   *session.Session
	logger *slog.Logger
}

// NewService creates an account service.
func NewService(gw *gateway.Client, sess *session.Session, logger *slog.Logger) *Service {
	return &Service{gw: gw, sess: sess, logger: logger}
}

// Login authenticates against the backend and establishes the local session.
// Validation failures are returned before any network call.
func (s *Service) Login(ctx context.Context, input LoginInput) (*session.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	var resp struct {
		Token string        `json:"token"`
		User  *session.User `json:"user"`
		Data  *struct {
			Token string        `json:"token"`
			User  *session.User `json:"user"`
		} `json:"data"`
	}
	if err := s.gw.Post(ctx, "/auth/login", input, &resp); err != nil {
		return nil, err
	}

	token, user := resp.Token, resp.User
	if token == "" && resp.Data != nil {
		token, user = resp.Data.Token, resp.Data.User
	}
	if token == "" {
		return nil, apperrors.Internal(apperrors.Wrap(apperrors.ErrInternal, "login response carried no token"))
	}

	if err := s.sess.Establish(ctx, token, user); err != nil {
		return nil, apperrors.Wrap(err, "establish session")
	}

	s.logger.InfoContext(ctx, "logged in", slog.String("email", input.Email))
	return user, nil
}

// Register creates an account. It does not log the user in; the backend
// expects a follow-up login.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if err := validator.Validate(input); err != nil {
		return err
	}
	if err := s.gw.Post(ctx, "/auth/register", input, nil); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "registered", slog.String("email", input.Email))
	return nil
}

// SendOTP requests a one-time password for the given mobile number.
// otpType distinguishes the flow (registration, login, ...).
func (s *Service) SendOTP(ctx context.Context, mobile, otpType string) error {
	input := struct {
		Mobile string `json:"mobile" validate:"required,len=10,numeric"`
		Type   string `json:"type" validate:"required"`
	}{mobile, otpType}
	if err := validator.Validate(input); err != nil {
		return err
	}
	return s.gw.Post(ctx, "/auth/send-otp", input, nil)
}

// UserDetails fetches the authoritative profile and refreshes the cached one.
func (s *Service) UserDetails(ctx context.Context) (*session.User, error) {
	if !s.sess.IsLoggedIn(ctx) {
		return nil, apperrors.Unauthorized("not logged in")
	}

	var resp struct {
		User *session.User `json:"user"`
		Data *session.User `json:"data"`
	}
	if err := s.gw.Get(ctx, "/auth/userDetails", nil, &resp); err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		user = resp.Data
	}
	if user == nil {
		return nil, apperrors.NotFound("user", "current")
	}

	if err := s.sess.UpdateUser(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, "refresh cached user")
	}
	return user, nil
}

// Logout drops session identity and the per-user collections.
func (s *Service) Logout(ctx context.Context) error {
	return s.sess.Logout(ctx)
}
