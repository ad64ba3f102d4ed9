package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
)

// In-memory repository fakes. Single-goroutine test use only.

type fakeUserRepo struct {
	users    map[models.ID]*models.User
	sessions *fakeSessionRepo
	answers  *fakeAnswerRepo
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicateKey)
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, repositories.ErrNotFound)
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, repositories.ErrNotFound)
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, repositories.ErrDuplicateKey)
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.users, id)
	for token, session := range r.sessions.sessions {
		if session.UserID == id {
			delete(r.sessions.sessions, token)
		}
	}
	for answerID, answer := range r.answers.answers {
		if answer.UserID == id {
			delete(r.answers.answers, answerID)
		}
	}
	return nil
}

type fakeTaskRepo struct {
	tasks       map[models.ID]*models.Task
	invalidated []models.ID
}

func (r *fakeTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	if err := task.EncodeContent(); err != nil {
		return err
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
	}
	clone := *task
	return &clone, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("task %s: %w", task.ID, repositories.ErrNotFound)
	}
	if err := task.EncodeContent(); err != nil {
		return err
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Task, int64, error) {
	out := make([]*models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		clone := *task
		out = append(out, &clone)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeTaskRepo) FindTagByName(ctx context.Context, tx *gorm.DB, name string) (*models.Tag, error) {
	for _, task := range r.tasks {
		for _, tag := range task.Tags {
			if tag.Name == name {
				clone := tag
				return &clone, nil
			}
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, repositories.ErrNotFound)
}

func (r *fakeTaskRepo) Invalidate(ctx context.Context, id models.ID) {
	r.invalidated = append(r.invalidated, id)
}

type fakeAnswerRepo struct {
	answers map[models.ID]*models.Answer
}

func (r *fakeAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if err := answer.EncodeContent(); err != nil {
		return err
	}
	clone := *answer
	r.answers[answer.ID] = &clone
	return nil
}

func (r *fakeAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id models.ID) (*models.Answer, error) {
	answer, ok := r.answers[id]
	if !ok {
		return nil, fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	clone := *answer
	if err := clone.DecodeContent(); err != nil {
		return nil, fmt.Errorf("answer %s: %v: %w", id, err, repositories.ErrCorruptContent)
	}
	return &clone, nil
}

func (r *fakeAnswerRepo) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if _, ok := r.answers[answer.ID]; !ok {
		return fmt.Errorf("answer %s: %w", answer.ID, repositories.ErrNotFound)
	}
	if err := answer.EncodeContent(); err != nil {
		return err
	}
	clone := *answer
	r.answers[answer.ID] = &clone
	return nil
}

func (r *fakeAnswerRepo) Delete(ctx context.Context, tx *gorm.DB, id models.ID) error {
	if _, ok := r.answers[id]; !ok {
		return fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.answers, id)
	return nil
}

func (r *fakeAnswerRepo) SetGradingResult(ctx context.Context, tx *gorm.DB, id models.ID, correct bool, explanation *string, gradedAt time.Time) error {
	answer, ok := r.answers[id]
	if !ok {
		return fmt.Errorf("answer %s: %w", id, repositories.ErrNotFound)
	}
	answer.Correct = &correct
	answer.Explanation = explanation
	answer.GradedAt = &gradedAt
	return nil
}

type fakeSessionRepo struct {
	sessions    map[models.ID]*models.Session
	invalidated []models.ID
}

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	clone := *session
	r.sessions[session.AuthToken] = &clone
	return nil
}

func (r *fakeSessionRepo) GetByToken(ctx context.Context, tx *gorm.DB, token models.ID) (*models.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", token, repositories.ErrNotFound)
	}
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, tx *gorm.DB, token models.ID) error {
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	var removed int64
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeSessionRepo) TokensByUser(ctx context.Context, tx *gorm.DB, userID models.ID) ([]models.ID, error) {
	var tokens []models.ID
	for token, session := range r.sessions {
		if session.UserID == userID {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

func (r *fakeSessionRepo) Invalidate(ctx context.Context, tokens ...models.ID) {
	r.invalidated = append(r.invalidated, tokens...)
}

func (r *fakeSessionRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID models.ID) (int64, error) {
	var count int64
	for _, session := range r.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeRepository struct {
	user    *fakeUserRepo
	task    *fakeTaskRepo
	answer  *fakeAnswerRepo
	session *fakeSessionRepo
}

func newFakeRepository() *fakeRepository {
	answers := &fakeAnswerRepo{answers: make(map[models.ID]*models.Answer)}
	sessions := &fakeSessionRepo{sessions: make(map[models.ID]*models.Session)}
	return &fakeRepository{
		user:    &fakeUserRepo{users: make(map[models.ID]*models.User), sessions: sessions, answers: answers},
		task:    &fakeTaskRepo{tasks: make(map[models.ID]*models.Task)},
		answer:  answers,
		session: sessions,
	}
}

func (r *fakeRepository) User() repositories.UserRepository       { return r.user }
func (r *fakeRepository) Task() repositories.TaskRepository       { return r.task }
func (r *fakeRepository) Answer() repositories.AnswerRepository   { return r.answer }
func (r *fakeRepository) Session() repositories.SessionRepository { return r.session }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
