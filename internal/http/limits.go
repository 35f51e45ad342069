package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimitMiddleware caps request bodies at maxBytes. Requests that declare
// a larger Content-Length are refused up front; others fail while the body
// is read.
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			respondTooLarge(c)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondTooLarge(c *gin.Context) {
	c.String(http.StatusRequestEntityTooLarge, "Request too large. The file exceeds the upload limit.")
}

// formatBytes renders a byte count for humans, e.g. 16777216 -> "16 MB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := float64(n) / float64(div)
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d %cB", int64(value), "KMGT"[exp])
	}
	return fmt.Sprintf("%.1f %cB", value, "KMGT"[exp])
}
