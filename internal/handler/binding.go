package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
)

const maxRequestBodySize = 1 << 20

// bindBody reads the raw body, normalizes string and double-encoded JSON and
// validates it into dst. It writes the error response and returns false on failure.
func bindBody(c *gin.Context, v *utils.Validator, dst any, strict bool) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error:   "Payload Too Large",
				Message: "Request body is too large",
			})
			return false
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Failed to read request body",
		})
		return false
	}

	var value any
	if len(bytes.TrimSpace(raw)) > 0 {
		value = utils.DecodePayload(raw)
	}

	if err := v.Bind(value, dst, strict); err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			respondValidation(c, verr)
			return false
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
		return false
	}

	return true
}

// pathID returns the :id parameter when it is a UUID
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := uuid.Validate(id); err != nil {
		respondValidation(c, &utils.ValidationError{Errors: []utils.FieldError{
			{Field: "id", Message: "id must be a valid UUID"},
		}})
		return "", false
	}
	return id, true
}
