package domain

import (
	"context"
	"time"
)

// Claims are the verified attributes of a provider-issued session token.
// They live for one request and are never persisted.
type Claims struct {
	Subject         string    `json:"sub"`
	SessionID       string    `json:"sid,omitempty"`
	Issuer          string    `json:"iss,omitempty"`
	AuthorizedParty string    `json:"azp,omitempty"`
	IssuedAt        time.Time `json:"iat"`
	ExpiresAt       time.Time `json:"exp"`
}

type claimsKey struct{}

// ContextWithClaims returns a copy of ctx carrying claims
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by ContextWithClaims, if any
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
