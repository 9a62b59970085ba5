package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers boundaries and part headers on top of the file bytes.
const multipartOverhead = 1 << 20

// BodyLimit caps the request body at files*maxFileSize plus multipart overhead.
// Reads past the cap fail with *http.MaxBytesError.
func BodyLimit(files int, maxFileSize int64) gin.HandlerFunc {
	limit := int64(files)*maxFileSize + multipartOverhead
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
