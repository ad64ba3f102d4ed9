package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/validator"
)

type taskService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTaskService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) TaskService {
	return &taskService{repo: repo, logger: logger, validator: v}
}

func (s *taskService) Create(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	task := &models.Task{
		ID:      models.NewID(),
		Title:   req.Title,
		Content: req.Content,
		Tags:    tagsFromNames(req.TagNames),
	}
	if req.Answer != nil {
		if err := task.SetAnswerKey(req.Answer); err != nil {
			return nil, fmt.Errorf("failed to set answer key: %w", err)
		}
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Task().Create(ctx, tx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "title", task.Title)
	return s.Get(ctx, task.ID)
}

func (s *taskService) Get(ctx context.Context, id models.ID) (*models.Task, error) {
	task, err := s.repo.Task().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update applies a full desired-state snapshot; the store skips the write
// when nothing changed and reconciles the tag set otherwise.
func (s *taskService) Update(ctx context.Context, id models.ID, req *UpdateTaskRequest) (*models.Task, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	desired := &models.Task{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
		Tags:    tagsFromNames(req.TagNames),
	}
	if req.Answer != nil {
		if err := desired.SetAnswerKey(req.Answer); err != nil {
			return nil, fmt.Errorf("failed to set answer key: %w", err)
		}
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Task().Update(ctx, tx, desired)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// Evict only after the commit; earlier and a concurrent read could
	// re-cache the pre-update row.
	s.repo.Task().Invalidate(ctx, id)
	return s.Get(ctx, id)
}

func (s *taskService) Delete(ctx context.Context, id models.ID) error {
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Task().Delete(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.repo.Task().Invalidate(ctx, id)

	s.logger.Info("Task deleted", "task_id", id)
	return nil
}

func (s *taskService) List(ctx context.Context, limit, offset int) (*TaskListResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	tasks, total, err := s.repo.Task().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return &TaskListResponse{Tasks: tasks, Total: total}, nil
}

func tagsFromNames(names []string) []models.Tag {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, models.Tag{Name: name})
	}
	return tags
}
