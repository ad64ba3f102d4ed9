package services

import (
	"context"
	"time"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type UpdateUserRequest = validator.UpdateUserRequest
type CreateTaskRequest = validator.CreateTaskRequest
type UpdateTaskRequest = validator.UpdateTaskRequest
type CreateAnswerRequest = validator.CreateAnswerRequest
type SolveAnswerRequest = validator.SolveAnswerRequest

// LoginResponse carries the authenticated user with the freshly issued
// token attached.
type LoginResponse struct {
	User      *models.User `json:"user"`
	AuthToken models.ID    `json:"auth_token"`
}

type TaskListResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Total int64          `json:"total"`
}

type VerifyResponse struct {
	AnswerID    models.ID `json:"answer_id"`
	Correct     bool      `json:"correct"`
	Explanation *string   `json:"explanation,omitempty"`
	GradedAt    time.Time `json:"graded_at"`
}

// ===== SERVICE INTERFACES =====

// UserService owns account lifecycle: registration, profile reads,
// desired-state updates, and cascading deletion.
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Get(ctx context.Context, id models.ID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id models.ID, token models.ID, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id models.ID, token models.ID) error
}

// AuthService owns token issue and checking. Expiry is lazy: tokens are
// judged against the clock when presented, not reaped in the background.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token models.ID) error
	Validate(ctx context.Context, token *models.ID) (*models.Session, error)
	Authorize(ctx context.Context, token *models.ID, userID models.ID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// TaskService owns the task catalog and its tag vocabulary.
type TaskService interface {
	Create(ctx context.Context, req *CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, id models.ID) (*models.Task, error)
	Update(ctx context.Context, id models.ID, req *UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id models.ID) error
	List(ctx context.Context, limit, offset int) (*TaskListResponse, error)
}

// AnswerService owns answer rows and drives verification after they are
// durable.
type AnswerService interface {
	Create(ctx context.Context, userID models.ID, token models.ID, req *CreateAnswerRequest) (*models.Answer, error)
	Get(ctx context.Context, id models.ID) (*models.Answer, error)
	Solve(ctx context.Context, id models.ID, token models.ID, req *SolveAnswerRequest) (*models.Answer, error)
	Delete(ctx context.Context, id models.ID, token models.ID) error
	Verify(ctx context.Context, id models.ID) (*VerifyResponse, error)
}

// GradingService decides whether one answer satisfies its task.
type GradingService interface {
	Grade(ctx context.Context, task *models.Task, answer *models.Answer) (correct bool, explanation *string, err error)
}

// ImportExportService moves the task catalog through xlsx workbooks.
type ImportExportService interface {
	ExportTasks(ctx context.Context) ([]byte, error)
	ImportTasks(ctx context.Context, data []byte) (int, error)
}

// ===== SERVICE MANAGER =====

// ServiceManager wires the services over shared dependencies and owns
// their lifecycle.
type ServiceManager interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error

	User() UserService
	Auth() AuthService
	Task() TaskService
	Answer() AnswerService
	Grading() GradingService
	ImportExport() ImportExportService
}
