package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/cache"
	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/reconcile"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

// TaskPostgreSQL persists tasks, tags and the task_tags join table. Tag
// names are a global natural key: adding a tag a task has never seen first
// looks the name up and reuses the existing row.
type TaskPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTaskPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.TaskRepository {
	return &TaskPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *TaskPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts the task row, then resolves and links every tag.
func (r *TaskPostgreSQL) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := task.EncodeContent(); err != nil {
		return fmt.Errorf("failed to encode task content: %w", err)
	}
	if err := db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	for i := range task.Tags {
		tagID, err := r.resolveTag(ctx, db, &task.Tags[i])
		if err != nil {
			return err
		}
		task.Tags[i].ID = tagID
		link := models.TaskTag{TaskID: task.ID, TagID: tagID}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link tag %q: %w", task.Tags[i].Name, err)
		}
	}

	return nil
}

// resolveTag returns the id of the existing tag with the same name, or
// inserts the tag and returns its fresh id.
func (r *TaskPostgreSQL) resolveTag(ctx context.Context, db *gorm.DB, tag *models.Tag) (models.ID, error) {
	var existing models.Tag
	err := db.First(&existing, "name = ?", tag.Name).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NilID, fmt.Errorf("failed to look up tag %q: %w", tag.Name, err)
	}

	if tag.ID.IsNil() {
		tag.ID = models.NewID()
	}
	if err := db.Create(tag).Error; err != nil {
		return models.NilID, fmt.Errorf("failed to create tag %q: %w", tag.Name, err)
	}
	return tag.ID, nil
}

// GetByID reads the task row and its tag set. A content payload that fails
// to decode reports ErrCorruptContent, not ErrNotFound. Reads outside a
// transaction go through the cache.
func (r *TaskPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Task, error) {
	db := r.getDB(tx).WithContext(ctx)

	cacheKey := "id:" + id.String()
	if tx == nil && r.cacheManager != nil {
		var cached cachedTask
		if err := r.cacheManager.Task.Get(ctx, cacheKey, &cached); err == nil {
			task := cached.Task
			task.RawAnswer = cached.Answer
			return &task, nil
		}
	}

	var task models.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := task.DecodeContent(); err != nil {
		return nil, fmt.Errorf("task %s: %v: %w", id, err, repositories.ErrCorruptContent)
	}

	if err := r.loadTags(db, &task); err != nil {
		return nil, err
	}

	if tx == nil && r.cacheManager != nil {
		_ = r.cacheManager.Task.Set(ctx, cacheKey, &cachedTask{Task: task, Answer: task.RawAnswer}, cache.TaskCacheConfig.TTL)
	}
	return &task, nil
}

// cachedTask carries the grading key alongside the task. The key column is
// excluded from the task's outward JSON, so the cache stores it explicitly.
type cachedTask struct {
	Task   models.Task    `json:"task"`
	Answer datatypes.JSON `json:"answer,omitempty"`
}

func (r *TaskPostgreSQL) loadTags(db *gorm.DB, task *models.Task) error {
	var tags []models.Tag
	err := db.Where("id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&models.TaskTag{}).Select("tag_id").Where("task_id = ?", task.ID),
	).Find(&tags).Error
	if err != nil {
		return fmt.Errorf("failed to get task tags: %w", err)
	}
	task.Tags = tags
	return nil
}

// Update reads the persisted task first and no-ops on attribute identity.
// Scalars write unconditionally; the tag set reconciles inside the same
// transaction, reusing tag rows by name.
func (r *TaskPostgreSQL) Update(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	db := r.getDB(tx).WithContext(ctx)

	persisted, err := r.GetByID(ctx, tx, task.ID)
	if err != nil {
		return err
	}
	if task.Equal(persisted) {
		return nil
	}

	if err := task.EncodeContent(); err != nil {
		return fmt.Errorf("failed to encode task content: %w", err)
	}
	updates := map[string]interface{}{
		"title":   task.Title,
		"content": task.RawContent,
		"answer":  task.RawAnswer,
	}
	if err := db.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	toAdd, toRemove := reconcile.DiffFunc(task.Tags, persisted.Tags, func(t models.Tag) string {
		return t.Name
	})
	for _, tag := range toRemove {
		if err := db.Where("task_id = ? AND tag_id = ?", task.ID, tag.ID).
			Delete(&models.TaskTag{}).Error; err != nil {
			return fmt.Errorf("failed to unlink tag %q: %w", tag.Name, err)
		}
	}
	for i := range toAdd {
		tagID, err := r.resolveTag(ctx, db, &toAdd[i])
		if err != nil {
			return err
		}
		link := models.TaskTag{TaskID: task.ID, TagID: tagID}
		if err := db.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link tag %q: %w", toAdd[i].Name, err)
		}
	}

	return nil
}

// Delete removes join rows before the task row. Tag rows stay: other tasks
// may share them.
func (r *TaskPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	db := r.getDB(tx).WithContext(ctx)

	if err := db.Where("task_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
		return fmt.Errorf("failed to delete task tag links: %w", err)
	}

	result := db.Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// List returns a page of tasks with tags assembled, plus the total count.
func (r *TaskPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Task, int64, error) {
	db := r.getDB(tx).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Task{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	var rows []models.Task
	query := db.Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(rows))
	for i := range rows {
		task := rows[i]
		if err := task.DecodeContent(); err != nil {
			return nil, 0, fmt.Errorf("task %s: %v: %w", task.ID, err, repositories.ErrCorruptContent)
		}
		if err := r.loadTags(db, &task); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, &task)
	}
	return tasks, total, nil
}

// FindTagByName resolves a tag by its natural key.
func (r *TaskPostgreSQL) FindTagByName(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error) {
	db := r.getDB(tx).WithContext(ctx)

	var tag models.Tag
	if err := db.First(&tag, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tag %q: %w", name, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// Invalidate evicts the cached task. Writes run inside a transaction, so
// eviction waits for the commit; evicting earlier would let a concurrent
// reader re-cache the row the transaction is still replacing.
func (r *TaskPostgreSQL) Invalidate(ctx context.Context, id models.ID) {
	if r.cacheManager == nil {
		return
	}
	_ = r.cacheManager.Task.Delete(ctx, "id:"+id.String())
}
