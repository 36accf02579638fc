package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tinyvectordb/tinyvectordb/internal/ratelimit"
	"github.com/tinyvectordb/tinyvectordb/internal/token"
)

// =============================================================================
// AUTH MIDDLEWARE
// =============================================================================

// TokenAuthMiddleware returns middleware that resolves the bearer token's
// permission for this route's resource category and rejects requests that
// resolve to Denied. The health endpoint is exempt. No-op if enabled is
// false, matching the rest of this project's opt-in auth posture.
func TokenAuthMiddleware(resolver *token.PermissionResolver, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		if c.Request.URL.Path == "/api/v1/health" {
			c.Next()
			return
		}

		resource := routeToResource(c.Request.URL.Path)
		if resource == "" {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			UnauthorizedError(c, "missing bearer token")
			c.Abort()
			return
		}

		if resolver.PermissionFor(resource, tokenStr) == 0 {
			UnauthorizedError(c, "token lacks permission for this resource")
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// routeToResource maps an API route to the RBAC resource category it
// exercises, the Token permission-bit routing from §4.9.
func routeToResource(path string) token.Resource {
	switch {
	case strings.Contains(path, "/search"):
		return token.Search
	case strings.Contains(path, "/snapshots"):
		return token.Snapshot
	case strings.Contains(path, "/tokens"):
		return token.Security
	case strings.Contains(path, "/vectors"):
		return token.Vector
	case strings.Contains(path, "/versions"):
		return token.Version
	case strings.Contains(path, "/spaces"):
		return token.Space
	default:
		return ""
	}
}

// =============================================================================
// RATE LIMIT MIDDLEWARE
// =============================================================================

// routeToToolCategory maps API routes to rate limiter resource categories.
func routeToToolCategory(path, method string) string {
	return string(routeToResource(path))
}

// RateLimitMiddleware returns middleware that rate-limits requests using the provided limiter
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		toolCategory := routeToToolCategory(c.Request.URL.Path, c.Request.Method)
		if toolCategory == "" {
			toolCategory = "default"
		}

		result := limiter.Allow(toolCategory)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			TooManyRequestsError(c, fmt.Sprintf("Rate limit exceeded for %s. Retry after %d seconds.", result.LimitType, retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

// =============================================================================
// BODY SIZE MIDDLEWARE
// =============================================================================

// MaxBodySizeMiddleware returns middleware that limits request body size
func MaxBodySizeMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && c.Request.ContentLength > maxBytes {
			PayloadTooLargeError(c, fmt.Sprintf("Request body too large. Maximum: %d bytes", maxBytes))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// =============================================================================
// BODY SIZE CONSTANTS
// =============================================================================

const (
	DefaultBodyLimit = 1 * 1024 * 1024  // 1MB
	IngestBodyLimit  = 10 * 1024 * 1024 // 10MB
)
