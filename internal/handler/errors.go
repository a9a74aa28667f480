package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/service"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
	"go.uber.org/zap"
)

const validationFailedMessage = "Validation failed"

// respondError maps service errors to HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr)
	case errors.Is(err, service.ErrBadInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: clientMessage(err),
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "Not Found",
			Message: clientMessage(err),
		})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "Conflict",
			Message: clientMessage(err),
		})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "An unexpected error occurred",
		})
	}
}

func clientMessage(err error) string {
	var serr *service.Error
	if errors.As(err, &serr) {
		return serr.Message
	}
	return err.Error()
}

func respondValidation(c *gin.Context, verr *utils.ValidationError) {
	c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    validationFailedMessage,
		Errors:     verr.Errors,
	})
}
