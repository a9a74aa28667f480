package domain

import (
	"math"
	"time"
)

// User represents an application user mirrored from the identity provider
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	OAuthID   string    `json:"oauthId" db:"oauth_id"`
	Username  *string   `json:"username" db:"username"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserData represents an outbound-calling credential set for one user and one campaign
type UserData struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"userId" db:"user_id"`
	CampaignName string    `json:"campaignName" db:"campaign_name"`
	OutboundID   string    `json:"outboundId" db:"outbound_id"`
	BearerToken  string    `json:"bearerToken" db:"bearer_token"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserDataPatch holds the optional fields of a UserData update
type UserDataPatch struct {
	CampaignName *string
	OutboundID   *string
	BearerToken  *string
}

// IsEmpty reports whether the patch changes nothing
func (p UserDataPatch) IsEmpty() bool {
	return p.CampaignName == nil && p.OutboundID == nil && p.BearerToken == nil
}

// Sort fields accepted when listing user data
const (
	SortByCreatedAt    = "createdAt"
	SortByUpdatedAt    = "updatedAt"
	SortByOutboundID   = "outboundId"
	SortByCampaignName = "campaignName"
)

// UserDataFilter describes a filtered, paginated and sorted user data listing
type UserDataFilter struct {
	UserID       string
	CampaignName string
	Page         int
	Limit        int
	SortBy       string
	Descending   bool
}

// Offset returns the number of rows to skip for the requested page,
// saturating at math.MaxInt
func (f UserDataFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}
