package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lingocode-app/practice-service/internal/events"
	"github.com/lingocode-app/practice-service/internal/grading"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/validator"
)

// ServiceManagerConfig holds the cross-service settings.
type ServiceManagerConfig struct {
	SessionTTL time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo          repositories.Repository
	logger        *slog.Logger
	validator     *validator.Validator
	publisher     events.EventPublisher
	gradingClient *grading.Client
	config        ServiceManagerConfig

	// Service instances
	userService         UserService
	authService         AuthService
	taskService         TaskService
	answerService       AnswerService
	gradingService      GradingService
	importExportService ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager over shared dependencies.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, gradingClient *grading.Client, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:          repo,
		logger:        logger,
		validator:     v,
		publisher:     publisher,
		gradingClient: gradingClient,
		config:        config,
	}
}

func (m *serviceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("service manager already initialized")
	}
	if m.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}

	m.authService = NewAuthService(m.repo, m.logger, m.validator, m.config.SessionTTL)
	m.gradingService = NewGradingService(m.gradingClient, m.logger)
	m.userService = NewUserService(m.repo, m.authService, m.publisher, m.logger, m.validator)
	m.taskService = NewTaskService(m.repo, m.logger, m.validator)
	m.answerService = NewAnswerService(m.repo, m.authService, m.gradingService, m.publisher, m.logger, m.validator)
	m.importExportService = NewImportExportService(m.repo, m.logger)

	m.initialized = true
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}

	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	m.shutdown = true
	m.initialized = false
	m.logger.Info("Service manager shut down")
	return nil
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository unhealthy: %w", err)
	}
	return nil
}

func (m *serviceManager) User() UserService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userService
}

func (m *serviceManager) Auth() AuthService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authService
}

func (m *serviceManager) Task() TaskService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.taskService
}

func (m *serviceManager) Answer() AnswerService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.answerService
}

func (m *serviceManager) Grading() GradingService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gradingService
}

func (m *serviceManager) ImportExport() ImportExportService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.importExportService
}
