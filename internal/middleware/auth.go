package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turnolab/scheduler-api/pkg/auth"
)

const ContextUserID = "user_id"

// Auth validates the bearer token and stores the subject in the context.
func Auth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing authorization header",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid authorization header",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}

		subject, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid token",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}

		c.Set(ContextUserID, subject)
		c.Next()
	}
}
