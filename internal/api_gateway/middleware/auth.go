package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the verified *identity.Identity
const IdentityKey = "identity"

// Auth requires an "Authorization: Bearer <token>" header accepted by verifier.
// Token verification is never retried.
func Auth(log *slog.Logger, verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed bearer token")
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.FromContext(c.Request.Context(), log).Warn("Token rejected",
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(IdentityKey, id)
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// GetIdentity returns the identity set by Auth, or nil on unauthenticated routes
func GetIdentity(c *gin.Context) *identity.Identity {
	if v, exists := c.Get(IdentityKey); exists {
		if id, ok := v.(*identity.Identity); ok {
			return id
		}
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	body := gin.H{
		"error": message,
		"code":  "UNAUTHORIZED",
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		body["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}
