package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lingocode-app/practice-service/internal/services"
	"github.com/lingocode-app/practice-service/internal/utils"
)

type HandlerManager struct {
	userHandler   *UserHandler
	authHandler   *AuthHandler
	taskHandler   *TaskHandler
	answerHandler *AnswerHandler

	serviceManager services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		userHandler:    NewUserHandler(serviceManager.User(), serviceManager.Auth(), logger),
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		taskHandler:    NewTaskHandler(serviceManager.Task(), serviceManager.ImportExport(), logger),
		answerHandler:  NewAnswerHandler(serviceManager.Answer(), serviceManager.Auth(), logger),
		serviceManager: serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
			auth.POST("/sessions/purge", hm.authHandler.PurgeSessions)
		}

		users := v1.Group("/users")
		{
			users.POST("", hm.userHandler.Register)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.POST("", hm.taskHandler.CreateTask)
			tasks.GET("", hm.taskHandler.ListTasks)
			tasks.GET("/export", hm.taskHandler.ExportTasks)
			tasks.POST("/import", hm.taskHandler.ImportTasks)
			tasks.GET("/:id", hm.taskHandler.GetTask)
			tasks.PUT("/:id", hm.taskHandler.UpdateTask)
			tasks.DELETE("/:id", hm.taskHandler.DeleteTask)
		}

		answers := v1.Group("/answers")
		{
			answers.POST("", hm.answerHandler.CreateAnswer)
			answers.GET("/:id", hm.answerHandler.GetAnswer)
			answers.PUT("/:id/solve", hm.answerHandler.SolveAnswer)
			answers.DELETE("/:id", hm.answerHandler.DeleteAnswer)
			answers.POST("/:id/verify", hm.answerHandler.VerifyAnswer)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "practice-service",
	})
}
