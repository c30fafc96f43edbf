package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	LoggerKey string = "logger"
)

// TapLogger scopes the request logger to the platform and one operation id.
func TapLogger(c *gin.Context) {
	logger := c.MustGet(LoggerKey).(*zerolog.Logger)

	operationLogger := logger.
		With().
		Str("platform", c.Params.ByName("platform")).
		Str("operationId", uuid.New().String()).
		Str("route", c.FullPath()).
		Logger()

	c.Set(LoggerKey, &operationLogger)
}
