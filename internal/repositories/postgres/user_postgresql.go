package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/reconcile"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

// UserPostgreSQL persists the user aggregate: the users row, its
// user_progress row and its outgoing friend links.
type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (r *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts the aggregate. The username conflict is checked explicitly
// so callers get ErrDuplicateKey instead of a driver-specific constraint
// error.
func (r *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx).WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username %q: %w", user.Username, err)
	}
	if count > 0 {
		return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicateKey)
	}

	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	progress := user.Progress
	progress.UserID = user.ID
	if err := db.Create(&progress).Error; err != nil {
		return fmt.Errorf("failed to create user progress: %w", err)
	}

	for _, friendID := range user.Friends {
		link := models.FriendLink{UserID1: user.ID, UserID2: friendID}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to create friend link: %w", err)
		}
	}

	return nil
}

// GetByID issues one query per owned table and assembles the aggregate.
func (r *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.User, error) {
	db := r.getDB(tx).WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.loadOwned(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername resolves the unique username to the full aggregate.
func (r *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := r.getDB(tx).WithContext(ctx)

	var user models.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := r.loadOwned(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) loadOwned(db *gorm.DB, user *models.User) error {
	var progress models.UserProgress
	if err := db.First(&progress, "user_id = ?", user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user progress %s: %w", user.ID, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to get user progress: %w", err)
	}
	user.Progress = progress

	var links []models.FriendLink
	if err := db.Find(&links, "user_id_1 = ?", user.ID).Error; err != nil {
		return fmt.Errorf("failed to get friend links: %w", err)
	}
	user.Friends = make([]models.ID, 0, len(links))
	for _, link := range links {
		user.Friends = append(user.Friends, link.UserID2)
	}
	return nil
}

// Update reads the persisted aggregate first. An attribute-identical value
// is a no-op; otherwise scalars are written unconditionally and the friend
// set is reconciled, all inside the caller's transaction.
func (r *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := r.getDB(tx).WithContext(ctx)

	persisted, err := r.GetByID(ctx, tx, user.ID)
	if err != nil {
		return err
	}
	if user.Equal(persisted) {
		return nil
	}

	if user.Username != persisted.Username {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username %q: %w", user.Username, err)
		}
		if count > 0 {
			return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicateKey)
		}
	}

	updates := map[string]interface{}{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"email":         user.Email,
		"phone":         user.Phone,
		"bio":           user.Bio,
		"level":         user.Level.Level,
		"xp":            user.Level.XP,
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	progressUpdates := map[string]interface{}{
		"course": user.Progress.Course,
		"unit":   user.Progress.Unit,
		"sector": user.Progress.Sector,
		"level":  user.Progress.Level,
		"task":   user.Progress.Task,
	}
	if err := db.Model(&models.UserProgress{}).Where("user_id = ?", user.ID).Updates(progressUpdates).Error; err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}

	toAdd, toRemove := reconcile.Diff(user.Friends, persisted.Friends)
	for _, friendID := range toAdd {
		link := models.FriendLink{UserID1: user.ID, UserID2: friendID}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to add friend link: %w", err)
		}
	}
	for _, friendID := range toRemove {
		if err := db.Where("user_id_1 = ? AND user_id_2 = ?", user.ID, friendID).
			Delete(&models.FriendLink{}).Error; err != nil {
			return fmt.Errorf("failed to remove friend link: %w", err)
		}
	}

	return nil
}

// Delete removes dependents before the users row: progress, friend links in
// both directions, sessions, answers.
func (r *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := db.Where("user_id = ?", id).Delete(&models.UserProgress{}).Error; err != nil {
		return fmt.Errorf("failed to delete user progress: %w", err)
	}
	if err := db.Where("user_id_1 = ? OR user_id_2 = ?", id, id).Delete(&models.FriendLink{}).Error; err != nil {
		return fmt.Errorf("failed to delete friend links: %w", err)
	}
	if err := db.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if err := db.Where("user_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}

	result := db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
