package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/validator"
)

type authService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	sessionTTL time.Duration
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = models.DefaultSessionTTL
	}
	return &authService{
		repo:       repo,
		logger:     logger,
		validator:  v,
		sessionTTL: sessionTTL,
	}
}

// Login matches the stored verifier byte for byte and issues a fresh
// session on success. A user may hold several live sessions at once.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.PasswordHash != req.PasswordHash {
		s.logger.Info("Login rejected", "username", req.Username)
		return nil, ErrBadCredentials
	}

	session := models.NewSession(user.ID, s.sessionTTL)
	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	user.AuthToken = &session.AuthToken

	s.logger.Info("User logged in", "user_id", user.ID)
	return &LoginResponse{User: user, AuthToken: session.AuthToken}, nil
}

// Logout drops the session. Unknown tokens succeed silently; logging out
// twice is not an error.
func (s *authService) Logout(ctx context.Context, token models.ID) error {
	if err := s.repo.Session().Delete(ctx, nil, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Validate walks the token through its states: present, known, unexpired.
// Expiry is judged against the clock; the expired row stays put until
// logout or a purge.
func (s *authService) Validate(ctx context.Context, token *models.ID) (*models.Session, error) {
	if token == nil || token.IsNil() {
		return nil, ErrNoTokenInUser
	}

	session, err := s.repo.Session().GetByToken(ctx, nil, *token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTokenNotInDatabase
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}
	return session, nil
}

// Authorize requires a valid token that belongs to the given principal.
func (s *authService) Authorize(ctx context.Context, token *models.ID, userID models.ID) error {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return ErrNotAuthorized
	}
	return nil
}

// PurgeExpired sweeps sessions past their window in one pass. Callers run
// it on demand; validity never depends on it.
func (s *authService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.Session().DeleteExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Info("Purged expired sessions", "count", removed)
	}
	return removed, nil
}
