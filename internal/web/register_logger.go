package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RegisterLogger scopes the process logger to the correlation id, on the gin context and on the request context.
func RegisterLogger(logger *zerolog.Logger) func(c *gin.Context) {
	return func(c *gin.Context) {
		correlationId := c.MustGet("correlationId").(string)

		requestLogger := logger.
			With().
			Str("correlationId", correlationId).
			Str("clientIp", c.ClientIP()).
			Logger()

		c.Set("logger", &requestLogger)
		c.Request = c.Request.WithContext(requestLogger.WithContext(c.Request.Context()))
	}
}
