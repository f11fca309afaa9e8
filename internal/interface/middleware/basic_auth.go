package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadwatch/warning-service/internal/observability"
)

// UsernameKey is the gin context key under which BasicAuth stores the
// verified identity. Handlers read it instead of reconstructing auth.
const UsernameKey = "username"

// CredentialChecker verifies a username/password pair. The credential vault
// satisfies it.
type CredentialChecker interface {
	Authenticate(ctx context.Context, username, password string) bool
}

// BasicAuth enforces HTTP Basic authentication against the credential
// vault. Missing credentials, unknown users and wrong passwords are all
// rejected identically with 401.
func BasicAuth(vault CredentialChecker, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !vault.Authenticate(c.Request.Context(), username, password) {
			if metrics != nil {
				metrics.AuthFailures.Inc()
			}
			c.Header("WWW-Authenticate", `Basic realm="warning"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(UsernameKey, username)
		c.Next()
	}
}
