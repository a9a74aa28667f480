package dto

import (
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
)

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every violated constraint of a request
type ValidationErrorResponse struct {
	StatusCode int                `json:"statusCode"`
	Message    string             `json:"message"`
	Errors     []utils.FieldError `json:"errors"`
}

// CountResponse carries a single count
type CountResponse struct {
	Count int64 `json:"count"`
}

// UserDataPage is a page of user data records
type UserDataPage struct {
	Items []domain.UserData `json:"items"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}
