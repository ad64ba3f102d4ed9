package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
)

// Every method accepts an optional transaction handle. A nil tx runs the
// statement on the repository's own connection; callers composing multiple
// operations pass the handle obtained from Repository.WithTransaction so
// the whole interaction commits or rolls back as one unit.

// UserRepository persists the user aggregate across users, user_progress
// and friends.
type UserRepository interface {
	// Create inserts the user, its progress row and its friend links. Fails
	// with ErrDuplicateKey when the username is already taken.
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error

	// GetByID assembles the full aggregate; ErrNotFound when absent.
	GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.User, error)

	// GetByUsername looks up by the unique username; ErrNotFound when absent.
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)

	// Update diffs against the persisted aggregate: a no-op when attribute
	// identical, otherwise scalar writes plus friend-set reconciliation.
	// Fails with ErrDuplicateKey when a changed username is already taken.
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error

	// Delete cascades: progress, friend links in both directions, sessions
	// and answers go before the users row.
	Delete(ctx context.Context, tx *gorm.DB, id models.ID) error
}

// TaskRepository persists tasks together with their tag set.
type TaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *models.Task) error
	GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Task, error)
	Update(ctx context.Context, tx *gorm.DB, task *models.Task) error
	Delete(ctx context.Context, tx *gorm.DB, id models.ID) error

	// List returns a page of tasks with their tags assembled, ordered by
	// title, plus the total row count.
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Task, int64, error)

	// FindTagByName resolves a tag by its natural key; ErrNotFound when the
	// name has never been used.
	FindTagByName(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error)

	// Invalidate evicts the cached task. Callers run it after their write
	// transaction commits so a concurrent read cannot re-cache the state
	// the commit just replaced.
	Invalidate(ctx context.Context, id models.ID)
}

// AnswerRepository persists answer rows.
type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Answer, error)
	Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	Delete(ctx context.Context, tx *gorm.DB, id models.ID) error

	// SetGradingResult records a verification outcome after the answer row
	// is already committed.
	SetGradingResult(ctx context.Context, tx *gorm.DB, id models.ID, correct bool, explanation *string, gradedAt time.Time) error
}

// SessionRepository persists issued tokens. Expiry is checked lazily by the
// auth service, never enforced here.
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetByToken(ctx context.Context, tx *gorm.DB, token models.ID) (*models.Session, error)

	// Delete is idempotent: removing an absent token is not an error.
	Delete(ctx context.Context, tx *gorm.DB, token models.ID) error

	// DeleteExpired removes every session past its window at the given
	// instant and reports how many rows went away.
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)

	// CountByUser reports live session rows for a user (expired included).
	CountByUser(ctx context.Context, tx *gorm.DB, userID models.ID) (int64, error)

	// TokensByUser lists the tokens currently issued to a user.
	TokensByUser(ctx context.Context, tx *gorm.DB, userID models.ID) ([]models.ID, error)

	// Invalidate evicts cached copies of the given tokens. The rows
	// themselves are untouched; callers run it after the delete that removed
	// them commits.
	Invalidate(ctx context.Context, tokens ...models.ID)
}

// Repository aggregates the entity repositories and the transaction scope
// they compose under.
type Repository interface {
	User() UserRepository
	Task() TaskRepository
	Answer() AnswerRepository
	Session() SessionRepository

	// WithTransaction runs fn inside one transaction; fn receives a handle
	// to thread through repository calls. Any error rolls everything back.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	Ping(ctx context.Context) error
	Close() error
}
