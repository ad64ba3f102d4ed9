package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lingocode-app/practice-service/internal/grading"
	"github.com/lingocode-app/practice-service/internal/models"
)

// defaultCorrectIndices grades multiple choice tasks that carry no answer
// key of their own.
var defaultCorrectIndices = []uint32{0, 1, 2}

type gradingService struct {
	client *grading.Client
	logger *slog.Logger
}

func NewGradingService(client *grading.Client, logger *slog.Logger) GradingService {
	return &gradingService{client: client, logger: logger}
}

// Grade dispatches on the task kind. Multiple choice is settled locally by
// set comparison against the answer key; open questions go out to the
// completion endpoint.
func (s *gradingService) Grade(ctx context.Context, task *models.Task, answer *models.Answer) (bool, *string, error) {
	if answer.Content == nil {
		return false, nil, ErrBadAnswerFormat
	}

	switch {
	case task.Content.MultipleChoice != nil:
		if answer.Content.MultipleChoice == nil {
			return false, nil, ErrBadAnswerFormat
		}
		correct, err := s.gradeMultipleChoice(task, answer.Content.MultipleChoice)
		return correct, nil, err

	case task.Content.Open != nil:
		if answer.Content.OpenQuestion == nil {
			return false, nil, ErrBadAnswerFormat
		}
		return s.gradeOpenQuestion(ctx, task, answer)

	default:
		return false, nil, fmt.Errorf("task %s: %w", task.ID, models.ErrUnknownVariant)
	}
}

// gradeMultipleChoice compares the selected indices against the key as
// sets of distinct members; selection order never matters and repeating an
// index adds nothing.
func (s *gradingService) gradeMultipleChoice(task *models.Task, selection *models.MultipleChoiceAnswer) (bool, error) {
	key, err := task.AnswerKey()
	if err != nil {
		return false, fmt.Errorf("task %s: bad answer key: %w", task.ID, err)
	}

	correctIndices := defaultCorrectIndices
	if key != nil {
		correctIndices = key.CorrectIndices
	}

	want := make(map[uint32]struct{}, len(correctIndices))
	for _, idx := range correctIndices {
		want[idx] = struct{}{}
	}
	got := make(map[uint32]struct{}, len(selection.SelectedAnswersIndices))
	for _, idx := range selection.SelectedAnswersIndices {
		got[idx] = struct{}{}
	}

	if len(got) != len(want) {
		return false, nil
	}
	for idx := range got {
		if _, ok := want[idx]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *gradingService) gradeOpenQuestion(ctx context.Context, task *models.Task, answer *models.Answer) (bool, *string, error) {
	if s.client == nil {
		return false, nil, &VerificationError{AnswerID: answer.ID.String(), Err: fmt.Errorf("no grading endpoint configured")}
	}

	prompt := grading.BuildPrompt(task.Content.Open.Content, answer.Content.OpenQuestion.Content)
	verdict, err := s.client.Grade(ctx, prompt)
	if err != nil {
		return false, nil, &VerificationError{AnswerID: answer.ID.String(), Err: err}
	}

	s.logger.Debug("Open question graded", "answer_id", answer.ID, "correct", verdict.Correct)
	explanation := verdict.Explanation
	return verdict.Correct, &explanation, nil
}
