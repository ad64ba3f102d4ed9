package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/events"
	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	auth      AuthService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, auth AuthService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		auth:      auth,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "username", req.Username)

	if err := s.checkProfileFields(req.Email, req.Phone, s.validator.Validate(req)); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           models.NewID(),
		Username:     req.Username,
		PasswordHash: req.PasswordHash,
		Email:        req.Email,
		Phone:        req.Phone,
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeUserRegistered, map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}))

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id models.ID) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update applies a full desired-state snapshot. The password hash is not
// part of the snapshot and is carried over from the persisted row.
func (s *userService) Update(ctx context.Context, id models.ID, token models.ID, req *UpdateUserRequest) (*models.User, error) {
	if err := s.auth.Authorize(ctx, &token, id); err != nil {
		return nil, err
	}

	if err := s.checkProfileFields(req.Email, req.Phone, s.validator.Validate(req)); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	desired := &models.User{
		ID:           id,
		Username:     req.Username,
		PasswordHash: current.PasswordHash,
		Email:        req.Email,
		Phone:        req.Phone,
		Bio:          req.Bio,
		Level:        req.Level,
		Friends:      req.Friends,
		Progress:     req.Progress,
	}
	desired.Progress.UserID = id

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.User().Update(ctx, tx, desired)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoSuchUser
		}
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes the account and everything hanging off it: progress,
// friend links in both directions, sessions, and answers.
func (s *userService) Delete(ctx context.Context, id models.ID, token models.ID) error {
	if err := s.auth.Authorize(ctx, &token, id); err != nil {
		return err
	}

	var tokens []models.ID
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		tokens, err = s.repo.Session().TokensByUser(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.repo.User().Delete(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNoSuchUser
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// The cascade removed the session rows; evict the cached copies after
	// the commit so the dead tokens stop validating immediately.
	s.repo.Session().Invalidate(ctx, tokens...)

	s.publish(ctx, events.NewEvent(events.TypeUserDeleted, map[string]interface{}{
		"user_id": id.String(),
	}))

	s.logger.Info("User deleted", "user_id", id)
	return nil
}

// checkProfileFields maps field validation onto the domain errors and
// enforces that at least one contact channel is present.
func (s *userService) checkProfileFields(email, phone *string, fieldErrors validator.ValidationErrors) error {
	for _, fe := range fieldErrors {
		switch fe.Rule {
		case "email":
			return ErrBadEmail
		case "phone":
			return ErrBadPhone
		}
	}
	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	if email == nil && phone == nil {
		return ErrMissingFields
	}
	return nil
}

func (s *userService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
