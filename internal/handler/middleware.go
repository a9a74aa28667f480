package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/identity"
	"github.com/prperemyshlev/identity-sync-service/pkg/observability"
	"go.uber.org/zap"
)

const claimsContextKey = "claims"

// AuthMiddleware verifies the bearer token and attaches its claims to the request.
// Requests without a well-formed Authorization header never reach the verifier.
func AuthMiddleware(verifier identity.Verifier, metrics *observability.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.RecordAuthRejection(c.Request.Context(), "missing_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Bearer token is missing or invalid.",
			})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrProviderUnavailable) {
				logger.Error("Token verification unavailable", zap.Error(err))
				metrics.RecordAuthRejection(c.Request.Context(), "provider_unavailable")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{
					Error:   "Service Unavailable",
					Message: "Token verification is temporarily unavailable.",
				})
				return
			}

			logger.Debug("Token rejected", zap.Error(err))
			metrics.RecordAuthRejection(c.Request.Context(), "invalid_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid token.",
			})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Request = c.Request.WithContext(domain.ContextWithClaims(c.Request.Context(), claims))

		c.Next()
	}
}

// RequireClaims rejects requests that reached it without verified claims
func RequireClaims() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "Forbidden resource",
			})
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the claims attached by AuthMiddleware
func ClaimsFromContext(c *gin.Context) (*domain.Claims, bool) {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return domain.ClaimsFromContext(c.Request.Context())
	}
	claims, ok := value.(*domain.Claims)
	return claims, ok && claims != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
