package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/pkg/jwt"
	"dashboard-engagement/server/pkg/response"
)

// PrincipalKey is the context key holding who made the request.
const PrincipalKey = "principal"

// InternalPrincipal identifies callers that presented the shared API secret.
const InternalPrincipal = "internal"

// APIAuth accepts Authorization: Bearer <token> where token is either the
// internal API secret or a Supabase access token. jwtMgr may be nil.
func APIAuth(secret string, jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			response.Unauthorized(c, 10002, "invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimSpace(parts[1])

		if secret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
			c.Set(PrincipalKey, InternalPrincipal)
			c.Next()
			return
		}

		if jwtMgr == nil || !jwtMgr.Enabled() {
			response.Unauthorized(c, 10002, "invalid API key")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		principal := claims.Email
		if principal == "" {
			principal = claims.Subject
		}
		c.Set(PrincipalKey, principal)

		c.Next()
	}
}
