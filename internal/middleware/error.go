package middleware

import (
	"renthub/pkg/logger"
	"renthub/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers panics into a clean server-error response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().Errorf("Panic recovered: %v", err)
				response.ServerError(c, "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
