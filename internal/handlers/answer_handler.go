package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingocode-app/practice-service/internal/services"
	"github.com/lingocode-app/practice-service/internal/utils"
)

type AnswerHandler struct {
	BaseHandler
	answerService services.AnswerService
	authService   services.AuthService
}

func NewAnswerHandler(answerService services.AnswerService, authService services.AuthService, logger utils.Logger) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler:   NewBaseHandler(logger),
		answerService: answerService,
		authService:   authService,
	}
}

// CreateAnswer opens an answer owned by the session's user, optionally
// already solved.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	session, err := h.authService.Validate(c.Request.Context(), &token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req services.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	answer, err := h.answerService.Create(c.Request.Context(), session.UserID, token, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, answer)
}

func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	answer, err := h.answerService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// SolveAnswer attaches content to an unsolved answer.
func (h *AnswerHandler) SolveAnswer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	var req services.SolveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	answer, err := h.answerService.Solve(c.Request.Context(), id, token, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	if err := h.answerService.Delete(c.Request.Context(), id, token); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// VerifyAnswer grades a solved answer and returns the verdict.
func (h *AnswerHandler) VerifyAnswer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.answerService.Verify(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
