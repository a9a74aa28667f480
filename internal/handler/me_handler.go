package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/service"
	"go.uber.org/zap"
)

// MeHandler resolves the caller's local user record
type MeHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewMeHandler creates a new me handler
func NewMeHandler(userService service.UserService, logger *zap.Logger) *MeHandler {
	return &MeHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the user whose oauth id is the token subject
// @Summary Get current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /me [get]
func (h *MeHandler) GetMe(c *gin.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Bearer token is missing or invalid.",
		})
		return
	}

	user, err := h.userService.GetByOAuthID(c.Request.Context(), claims.Subject)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
