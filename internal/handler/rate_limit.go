package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/service"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per key over a sliding window.
// Requests are let through when the limiter backend fails.
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyFunc(c)

		err := rateLimiter.Allow(ctx, key, limit, window)
		if err != nil && !errors.Is(err, service.ErrRateLimited) {
			logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		var limited *service.RateLimitError
		if errors.As(err, &limited) {
			c.Header("X-RateLimit-Remaining", "0")
			retryAfter := strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds())))
			c.Header("X-RateLimit-Retry-After", retryAfter)
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: limited.Error(),
			})
			return
		}

		if remaining, err := rateLimiter.GetRemainingRequests(ctx, key, limit, window); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP
func IPBasedKey(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return "ip:" + strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return "ip:" + c.ClientIP()
}
