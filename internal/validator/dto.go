package validator

import "github.com/lingocode-app/practice-service/internal/models"

// RegisterRequest carries the fields needed to create an account. The
// password hash arrives pre-computed; hashing is the transport layer's
// collaborator. At least one of email/phone is required, checked by the
// user service on top of the field rules here.
type RegisterRequest struct {
	Username     string  `json:"username" validate:"required,max=64"`
	PasswordHash string  `json:"password_hash" validate:"required,max=255"`
	Email        *string `json:"email" validate:"omitempty,email,max=128"`
	Phone        *string `json:"phone" validate:"omitempty,phone"`
}

// LoginRequest authenticates by exact verifier comparison.
type LoginRequest struct {
	Username     string `json:"username" validate:"required,max=64"`
	PasswordHash string `json:"password_hash" validate:"required,max=255"`
}

// UpdateUserRequest is a full desired-state snapshot; the store diffs it
// against the persisted aggregate.
type UpdateUserRequest struct {
	Username string              `json:"username" validate:"required,max=64"`
	Email    *string             `json:"email" validate:"omitempty,email,max=128"`
	Phone    *string             `json:"phone" validate:"omitempty,phone"`
	Bio      *string             `json:"bio" validate:"omitempty,max=2000"`
	Friends  []models.ID         `json:"friends"`
	Level    models.UserLevel    `json:"level"`
	Progress models.UserProgress `json:"progress"`
}

// CreateTaskRequest creates a task with its tag names; ids are resolved by
// natural key in the store.
type CreateTaskRequest struct {
	Title    string                `json:"title" validate:"required,max=255"`
	Content  models.TaskContent    `json:"content"`
	TagNames []string              `json:"tags" validate:"dive,required,max=64"`
	Answer   *models.TaskAnswerKey `json:"answer"`
}

// UpdateTaskRequest is a desired-state snapshot of one task.
type UpdateTaskRequest struct {
	Title    string                `json:"title" validate:"required,max=255"`
	Content  models.TaskContent    `json:"content"`
	TagNames []string              `json:"tags" validate:"dive,required,max=64"`
	Answer   *models.TaskAnswerKey `json:"answer"`
}

// CreateAnswerRequest opens an answer for a task, optionally pre-solved.
type CreateAnswerRequest struct {
	TaskID  models.ID             `json:"task_id" validate:"required"`
	Content *models.AnswerContent `json:"content"`
}

// SolveAnswerRequest attaches content to an unsolved answer.
type SolveAnswerRequest struct {
	Content models.AnswerContent `json:"content"`
}
