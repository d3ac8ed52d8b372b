package handler

import (
	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/internal/api/middleware"
)

// Principal returns who the auth middleware admitted: the token's email or
// subject for user JWTs, "internal" for the shared secret. Empty when the route
// is not authenticated.
func Principal(c *gin.Context) string {
	v, exists := c.Get(middleware.PrincipalKey)
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}
