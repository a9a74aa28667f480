package dto

import "strings"

// CreateUserRequest represents a direct user creation request
type CreateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	OAuthID  string  `json:"oauthId" validate:"required,min=1"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3"`
}

// Normalize trims the email before validation
func (r *CreateUserRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// UpdateUserRequest represents a user update request
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3"`
}

// CreateUserDataRequest creates credentials for a user referenced by id
type CreateUserDataRequest struct {
	UserID       string `json:"userId" validate:"required,uuid"`
	CampaignName string `json:"campaignName" validate:"required,min=1"`
	OutboundID   string `json:"outboundId" validate:"required,min=1"`
	BearerToken  string `json:"bearerToken" validate:"required,min=1"`
}

// CreateUserDataByEmailRequest creates credentials for a user referenced by email
type CreateUserDataByEmailRequest struct {
	Email        string `json:"email" validate:"required,email"`
	CampaignName string `json:"campaignName" validate:"required,min=1"`
	OutboundID   string `json:"outboundId" validate:"required,min=1"`
	BearerToken  string `json:"bearerToken" validate:"required,min=1"`
}

func (r *CreateUserDataByEmailRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// UpdateUserDataRequest is a partial update; absent fields are left unchanged
type UpdateUserDataRequest struct {
	CampaignName *string `json:"campaignName,omitempty" validate:"omitempty,min=1"`
	OutboundID   *string `json:"outboundId,omitempty" validate:"omitempty,min=1"`
	BearerToken  *string `json:"bearerToken,omitempty" validate:"omitempty,min=1"`
}

// UserDataQuery holds list parameters for admin user data
type UserDataQuery struct {
	Page         int    `form:"page" json:"page" validate:"gte=1,lte=1000000"`
	Limit        int    `form:"limit" json:"limit" validate:"gte=1,lte=100"`
	SortBy       string `form:"sortBy" json:"sortBy" validate:"oneof=createdAt updatedAt outboundId campaignName"`
	SortOrder    string `form:"sortOrder" json:"sortOrder" validate:"oneof=asc desc"`
	UserID       string `form:"userId" json:"userId" validate:"omitempty,uuid"`
	CampaignName string `form:"campaignName" json:"campaignName"`
}

// DefaultUserDataQuery returns the query used when parameters are omitted
func DefaultUserDataQuery() UserDataQuery {
	return UserDataQuery{
		Page:      1,
		Limit:     10,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}
}
