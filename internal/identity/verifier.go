package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
)

// Verification errors. Callers answer every ErrTokenInvalid the same way;
// the wrapped reason is for logs only.
var (
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrProviderUnavailable = errors.New("identity provider is unavailable")
)

// Verifier validates a bearer token and returns its claims
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.Claims, error)
}

// Config configures a JWKSVerifier
type Config struct {
	JWKSURL           string
	SecretKey         string
	Issuer            string
	AuthorizedParties []string
	CacheTTL          time.Duration
	ClockSkew         time.Duration
	Timeout           time.Duration
	HTTPClient        *http.Client
}

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID       string `json:"sid,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
}

// JWKSVerifier verifies RS256 session tokens against the provider's published key set
type JWKSVerifier struct {
	keys              *keySet
	issuer            string
	authorizedParties map[string]struct{}
	clockSkew         time.Duration
	now               func() time.Time
}

// NewJWKSVerifier creates a verifier; keys are fetched lazily on first use
func NewJWKSVerifier(cfg Config) (*JWKSVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("JWKS URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	parties := make(map[string]struct{}, len(cfg.AuthorizedParties))
	for _, p := range cfg.AuthorizedParties {
		if p != "" {
			parties[p] = struct{}{}
		}
	}

	return &JWKSVerifier{
		keys:              newKeySet(cfg.JWKSURL, withSecretKey(client, cfg.SecretKey), ttl, timeout),
		issuer:            cfg.Issuer,
		authorizedParties: parties,
		clockSkew:         cfg.ClockSkew,
		now:               time.Now,
	}, nil
}

// Verify parses and validates token
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenInvalid)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	claims := &sessionClaims{}
	_, err := jwt.NewParser(options...).ParseWithClaims(token, claims, v.keys.jwtKeyfunc(ctx))
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		if errors.Is(err, ErrTokenInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	if len(v.authorizedParties) > 0 && claims.AuthorizedParty != "" {
		if _, ok := v.authorizedParties[claims.AuthorizedParty]; !ok {
			return nil, fmt.Errorf("%w: unauthorized party %q", ErrTokenInvalid, claims.AuthorizedParty)
		}
	}

	result := &domain.Claims{
		Subject:         claims.Subject,
		SessionID:       claims.SessionID,
		Issuer:          claims.Issuer,
		AuthorizedParty: claims.AuthorizedParty,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}
