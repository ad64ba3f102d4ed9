package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/cache"
	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

// SessionPostgreSQL persists issued tokens. Token lookups are hot (every
// authorized request validates) so reads outside a transaction go through
// the cache.
type SessionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSessionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token models.ID) (*models.Session, error) {
	cacheKey := "token:" + token.String()
	if tx == nil && r.cacheManager != nil {
		var cached models.Session
		if err := r.cacheManager.Session.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	db := r.getDB(tx).WithContext(ctx)

	var session models.Session
	if err := db.First(&session, "auth_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", token, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if tx == nil && r.cacheManager != nil {
		_ = r.cacheManager.Session.Set(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL)
	}
	return &session, nil
}

// Delete is idempotent: a missing row is success.
func (r *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, token models.ID) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := db.Where("auth_token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if r.cacheManager != nil {
		_ = r.cacheManager.Session.Delete(ctx, "token:"+token.String())
	}
	return nil
}

// DeleteExpired sweeps rows past their window. Expiry stays lazy at check
// time; this exists for retention, not correctness.
func (r *SessionPostgreSQL) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	db := r.getDB(tx).WithContext(ctx)

	result := db.Where("expiration_time <= ?", now).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// TokensByUser lists the tokens issued to a user. The user-delete cascade
// collects these before removing the rows so the cached copies can be
// evicted once the delete commits.
func (r *SessionPostgreSQL) TokensByUser(ctx context.Context, tx *gorm.DB, userID models.ID) ([]models.ID, error) {
	db := r.getDB(tx).WithContext(ctx)

	var tokens []models.ID
	if err := db.Model(&models.Session{}).Where("user_id = ?", userID).Pluck("auth_token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to list session tokens: %w", err)
	}
	return tokens, nil
}

// Invalidate evicts cached sessions. Without it a token whose row was
// removed by a cascade keeps validating until the cache TTL runs out.
func (r *SessionPostgreSQL) Invalidate(ctx context.Context, tokens ...models.ID) {
	if r.cacheManager == nil {
		return
	}
	for _, token := range tokens {
		_ = r.cacheManager.Session.Delete(ctx, "token:"+token.String())
	}
}

func (r *SessionPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID models.ID) (int64, error) {
	db := r.getDB(tx).WithContext(ctx)

	var count int64
	if err := db.Model(&models.Session{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
