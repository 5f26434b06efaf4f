package middleware

import (
	"log"
	"net/http"
	"strings"

	"vidgate/internal/pkg/response"
	"vidgate/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// Revocations is consulted on every access-token check. The in-process
// denylist behind it is best-effort only, not an authoritative revocation
// store.
type Revocations interface {
	Contains(jti string) bool
}

// JWTAuth protects routes with an access-tier bearer token. On success the
// subject user id and the token id are stored on the request context.
func JWTAuth(authority *token.Authority, revoked Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_INVALID", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_INVALID", "Empty token")
			c.Abort()
			return
		}

		claims, err := authority.Verify(token.TierAccess, tokenStr)
		if err != nil {
			// Expired vs invalid stays internal; the client sees one answer.
			log.Printf("access_token_rejected path=%s reason=%v", c.Request.URL.Path, err)
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		if revoked != nil && revoked.Contains(claims.ID) {
			log.Printf("access_token_rejected path=%s reason=revoked jti=%s", c.Request.URL.Path, claims.ID)
			response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("token_id", claims.ID)
		c.Set("token_expires_at", claims.ExpiresAt.Time)
		c.Next()
	}
}
