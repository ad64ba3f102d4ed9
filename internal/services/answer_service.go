package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/events"
	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/validator"
)

type answerService struct {
	repo      repositories.Repository
	auth      AuthService
	grading   GradingService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAnswerService(repo repositories.Repository, auth AuthService, grading GradingService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AnswerService {
	return &answerService{
		repo:      repo,
		auth:      auth,
		grading:   grading,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Create opens an answer for the authenticated user, optionally already
// solved. The row is committed before any verification runs.
func (s *answerService) Create(ctx context.Context, userID models.ID, token models.ID, req *CreateAnswerRequest) (*models.Answer, error) {
	if err := s.auth.Authorize(ctx, &token, userID); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	task, err := s.repo.Task().GetByID(ctx, nil, req.TaskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("task %s: %w", req.TaskID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if req.Content != nil && !contentMatchesTask(task, req.Content) {
		return nil, ErrBadAnswerFormat
	}

	answer := models.NewAnswer(userID, req.TaskID)
	if req.Content != nil {
		answer = answer.Solve(*req.Content)
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Answer().Create(ctx, tx, answer)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}

	s.logger.Info("Answer created", "answer_id", answer.ID, "task_id", req.TaskID, "user_id", userID)
	return answer, nil
}

func (s *answerService) Get(ctx context.Context, id models.ID) (*models.Answer, error) {
	answer, err := s.repo.Answer().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return answer, nil
}

// Solve attaches content to a previously opened answer. Only the owner may
// solve, and an answer solves once.
func (s *answerService) Solve(ctx context.Context, id models.ID, token models.ID, req *SolveAnswerRequest) (*models.Answer, error) {
	answer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Authorize(ctx, &token, answer.UserID); err != nil {
		return nil, err
	}
	if answer.Content != nil {
		return nil, ErrAlreadySolved
	}

	task, err := s.repo.Task().GetByID(ctx, nil, answer.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if !contentMatchesTask(task, &req.Content) {
		return nil, ErrBadAnswerFormat
	}

	solved := answer.Solve(req.Content)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Answer().Update(ctx, tx, solved)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to solve answer: %w", err)
	}

	s.logger.Info("Answer solved", "answer_id", id)
	return solved, nil
}

func (s *answerService) Delete(ctx context.Context, id models.ID, token models.ID) error {
	answer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.Authorize(ctx, &token, answer.UserID); err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Answer().Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
	}
	return nil
}

// Verify grades a solved answer and records the verdict on the row. It
// always runs against committed data: the answer was durable before any
// external grading call is made.
func (s *answerService) Verify(ctx context.Context, id models.ID) (*VerifyResponse, error) {
	answer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Task().GetByID(ctx, nil, answer.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	correct, explanation, err := s.grading.Grade(ctx, task, answer)
	if err != nil {
		return nil, err
	}

	gradedAt := time.Now().UTC()
	if err := s.repo.Answer().SetGradingResult(ctx, nil, id, correct, explanation, gradedAt); err != nil {
		return nil, fmt.Errorf("failed to record grading result: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeAnswerVerified, map[string]interface{}{
		"answer_id": id.String(),
		"task_id":   answer.TaskID.String(),
		"user_id":   answer.UserID.String(),
		"correct":   correct,
	}))

	s.logger.Info("Answer verified", "answer_id", id, "correct", correct)
	return &VerifyResponse{
		AnswerID:    id,
		Correct:     correct,
		Explanation: explanation,
		GradedAt:    gradedAt,
	}, nil
}

// contentMatchesTask checks the variant pairing: multiple choice answers
// for multiple choice tasks, open text for open questions.
func contentMatchesTask(task *models.Task, content *models.AnswerContent) bool {
	switch {
	case task.Content.MultipleChoice != nil:
		return content.MultipleChoice != nil
	case task.Content.Open != nil:
		return content.OpenQuestion != nil
	default:
		return false
	}
}

func (s *answerService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}
