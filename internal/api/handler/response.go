package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/bucketgate/internal/api/middleware"
	"github.com/timmy/bucketgate/internal/logger"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Errors builds error responses. Details carry the underlying error message
// unless ExposeDetails is false.
type Errors struct {
	ExposeDetails bool
}

// respond writes {error, details} with the given status and aborts the chain.
// Server-side failures are logged with the request logger, details included.
func (e Errors) respond(c *gin.Context, status int, summary string, err error) {
	if status >= http.StatusInternalServerError {
		log := middleware.GetLogger(c).WithField(logger.FieldStatus, status)
		if err != nil {
			log = log.WithError(err)
		}
		log.Error(summary)
	}

	body := ErrorResponse{Error: summary}
	if err != nil && e.ExposeDetails {
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
