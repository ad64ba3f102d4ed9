package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingocode-app/practice-service/internal/services"
	"github.com/lingocode-app/practice-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout drops the presented session; unknown tokens still succeed.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := h.requireToken(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PurgeSessions sweeps expired sessions on demand.
func (h *AuthHandler) PurgeSessions(c *gin.Context) {
	removed, err := h.authService.PurgeExpired(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
