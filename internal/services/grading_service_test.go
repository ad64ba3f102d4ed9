package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lingocode-app/practice-service/internal/models"
)

func mcTask(t *testing.T, indices []uint32) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:      models.NewID(),
		Title:   "pick the correct options",
		Content: models.TaskContent{MultipleChoice: &models.MultipleChoiceTask{Choices: []string{"a", "b", "c", "d"}}},
	}
	if indices != nil {
		if err := task.SetAnswerKey(&models.TaskAnswerKey{CorrectIndices: indices}); err != nil {
			t.Fatalf("SetAnswerKey failed: %v", err)
		}
	}
	return task
}

func mcAnswer(indices []uint32) *models.Answer {
	answer := models.NewAnswer(models.NewID(), models.NewID())
	return answer.Solve(models.AnswerContent{
		MultipleChoice: &models.MultipleChoiceAnswer{SelectedAnswersIndices: indices},
	})
}

func TestGradeMultipleChoice(t *testing.T) {
	service := NewGradingService(nil, testLogger())
	ctx := context.Background()

	tests := []struct {
		name     string
		key      []uint32
		selected []uint32
		want     bool
	}{
		{name: "default key order independent", key: nil, selected: []uint32{2, 1, 0}, want: true},
		{name: "default key exact", key: nil, selected: []uint32{0, 1, 2}, want: true},
		{name: "default key wrong member", key: nil, selected: []uint32{0, 1, 3}, want: false},
		{name: "default key too few", key: nil, selected: []uint32{0, 1}, want: false},
		{name: "duplicates never pad a selection", key: nil, selected: []uint32{0, 0, 2}, want: false},
		{name: "custom key match", key: []uint32{1, 3}, selected: []uint32{3, 1}, want: true},
		{name: "custom key miss", key: []uint32{1, 3}, selected: []uint32{1, 2}, want: false},
		{name: "custom key repeated member", key: []uint32{1, 3}, selected: []uint32{1, 1}, want: false},
		{name: "empty selection vs key", key: []uint32{0}, selected: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, explanation, err := service.Grade(ctx, mcTask(t, tt.key), mcAnswer(tt.selected))
			if err != nil {
				t.Fatalf("Grade failed: %v", err)
			}
			if correct != tt.want {
				t.Errorf("correct = %v, want %v", correct, tt.want)
			}
			if explanation != nil {
				t.Errorf("multiple choice grading produced an explanation: %q", *explanation)
			}
		})
	}
}

func TestGradeContentMismatch(t *testing.T) {
	service := NewGradingService(nil, testLogger())
	ctx := context.Background()

	task := mcTask(t, nil)

	t.Run("unsolved answer", func(t *testing.T) {
		answer := models.NewAnswer(models.NewID(), task.ID)
		if _, _, err := service.Grade(ctx, task, answer); !errors.Is(err, ErrBadAnswerFormat) {
			t.Errorf("Grade = %v, want ErrBadAnswerFormat", err)
		}
	})

	t.Run("open answer for choice task", func(t *testing.T) {
		answer := models.NewAnswer(models.NewID(), task.ID).Solve(models.AnswerContent{
			OpenQuestion: &models.OpenQuestionAnswer{Content: "text"},
		})
		if _, _, err := service.Grade(ctx, task, answer); !errors.Is(err, ErrBadAnswerFormat) {
			t.Errorf("Grade = %v, want ErrBadAnswerFormat", err)
		}
	})
}

func TestGradeOpenQuestionWithoutEndpoint(t *testing.T) {
	service := NewGradingService(nil, testLogger())
	ctx := context.Background()

	task := &models.Task{
		ID:      models.NewID(),
		Title:   "explain",
		Content: models.TaskContent{Open: &models.OpenQuestionTask{Content: "what is an interface?"}},
	}
	answer := models.NewAnswer(models.NewID(), task.ID).Solve(models.AnswerContent{
		OpenQuestion: &models.OpenQuestionAnswer{Content: "a method set contract"},
	})

	_, _, err := service.Grade(ctx, task, answer)
	var verificationErr *VerificationError
	if !errors.As(err, &verificationErr) {
		t.Errorf("Grade without endpoint = %v, want VerificationError", err)
	}
}
