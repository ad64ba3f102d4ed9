package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lingocode-app/practice-service/internal/models"
	"github.com/lingocode-app/practice-service/internal/repositories"
	"github.com/lingocode-app/practice-service/internal/services"
	"github.com/lingocode-app/practice-service/internal/utils"
	"github.com/lingocode-app/practice-service/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// pathID parses the named path parameter as an entity id.
func (h *BaseHandler) pathID(c *gin.Context, name string) (models.ID, bool) {
	id, err := models.ParseID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id",
			Details: err.Error(),
		})
		return models.NilID, false
	}
	return id, true
}

// bearerToken extracts the auth token from the Authorization header. A
// missing or malformed header yields nil; the services decide whether
// that is acceptable.
func (h *BaseHandler) bearerToken(c *gin.Context) *models.ID {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil
	}
	token, err := models.ParseID(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &token
}

// requireToken is bearerToken plus a 401 when the header is absent.
func (h *BaseHandler) requireToken(c *gin.Context) (models.ID, bool) {
	token := h.bearerToken(c)
	if token == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing auth token"})
		return models.NilID, false
	}
	return *token, true
}

// handleServiceError maps domain errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
		return
	}

	var verificationErr *services.VerificationError
	if errors.As(err, &verificationErr) {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Verification failed",
			Details: verificationErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrNoSuchUser), repositories.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrUsernameExists), errors.Is(err, services.ErrAlreadySolved):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrBadEmail),
		errors.Is(err, services.ErrBadPhone),
		errors.Is(err, services.ErrBadAnswerFormat),
		errors.Is(err, models.ErrUnknownVariant):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrBadCredentials),
		errors.Is(err, services.ErrNoTokenInUser),
		errors.Is(err, services.ErrTokenNotInDatabase),
		errors.Is(err, services.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
