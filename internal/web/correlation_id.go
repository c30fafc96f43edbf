package web

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CorrelationIdHeader = "x-correlation-id"

// CorrelationId takes the correlation id from the request header or creates one, and echoes it back.
func CorrelationId(c *gin.Context) {
	correlationId := c.GetHeader(CorrelationIdHeader)
	if correlationId == "" {
		correlationId = uuid.New().String()
	}

	c.Set("correlationId", correlationId)
	c.Header(CorrelationIdHeader, correlationId)
}
