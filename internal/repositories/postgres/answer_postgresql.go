package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

// AnswerPostgreSQL persists answer rows. Content is a nullable JSONB
// column: NULL while the answer is unsolved.
type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (r *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *AnswerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := answer.EncodeContent(); err != nil {
		return fmt.Errorf("failed to encode answer content: %w", err)
	}
	if err := db.Create(answer).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

// GetByID distinguishes a missing row from a row whose content payload no
// longer decodes as a known variant.
func (r *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Answer, error) {
	db := r.getDB(tx).WithContext(ctx)

	var answer models.Answer
	if err := db.First(&answer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	if err := answer.DecodeContent(); err != nil {
		return nil, fmt.Errorf("answer %s: %v: %w", id, err, repositories.ErrCorruptContent)
	}
	return &answer, nil
}

// Update replaces the row wholesale; solving an answer is a content
// replacement on an existing row.
func (r *AnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := answer.EncodeContent(); err != nil {
		return fmt.Errorf("failed to encode answer content: %w", err)
	}
	updates := map[string]interface{}{
		"task_id": answer.TaskID,
		"user_id": answer.UserID,
		"content": answer.RawContent,
	}
	result := db.Model(&models.Answer{}).Where("id = ?", answer.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update answer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("answer %s: %w", answer.ID, repositories.ErrNotFound)
	}
	return nil
}

func (r *AnswerPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	db := r.getDB(tx).WithContext(ctx)

	result := db.Where("id = ?", id).Delete(&models.Answer{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete answer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// SetGradingResult records a verification outcome. It runs outside the
// create transaction: the answer row is already durable by the time any
// grading call is made.
func (r *AnswerPostgreSQL) SetGradingResult(ctx context.Context, tx *gorm.DB, id models.ID, correct bool, explanation *string, gradedAt time.Time) error {
	db := r.getDB(tx).WithContext(ctx)

	updates := map[string]interface{}{
		"correct":     correct,
		"explanation": explanation,
		"graded_at":   gradedAt,
	}
	result := db.Model(&models.Answer{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set grading result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}
