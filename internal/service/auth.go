// Package service enforces the authorization policy in front of the
// store. The store itself is pure CRUD plus lifecycle; every permission
// decision is made here, before any data is touched.
package service

import (
	"context"
	"errors"
	"log/slog"

	"taskhub/internal/models"
	"taskhub/internal/session"
	"taskhub/internal/storage"
)

// ErrForbidden marks an authorization policy denial.
var ErrForbidden = errors.New("forbidden")

// AuthService handles login, registration and logout.
type AuthService struct {
	store    storage.Store
	sessions *session.Manager
	logger   *slog.Logger
}

func NewAuthService(store storage.Store, sessions *session.Manager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{store: store, sessions: sessions, logger: logger}
}

// Login authenticates and opens a session. Failure carries no
// sub-reason.
func (s *AuthService) Login(ctx context.Context, email, credential string) (models.User, string, error) {
	user, err := s.store.Authenticate(ctx, email, credential)
	if err != nil {
		return models.User{}, "", err
	}
	token := s.sessions.Issue(user)
	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// Register creates the account and immediately opens a session for it.
func (s *AuthService) Register(ctx context.Context, input storage.RegisterInput) (models.User, string, error) {
	user, err := s.store.CreateAccount(ctx, input)
	if err != nil {
		return models.User{}, "", err
	}
	token := s.sessions.Issue(user)
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("organization_id", user.OrganizationID),
		slog.String("role", string(user.Role)))
	return user, token, nil
}

// Logout revokes the token. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) {
	s.sessions.Revoke(token)
}
