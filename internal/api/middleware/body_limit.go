package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashboard-engagement/server/pkg/response"
)

// BodyLimit caps the request body at maxBytes. Handlers that read the body see
// *http.MaxBytesError; anything they left unanswered gets a 413 here.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var maxErr *http.MaxBytesError
			if errors.As(err.Err, &maxErr) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
				return
			}
		}
	}
}
