package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const requestStartKey = "requestStartTime"

// CurrentTimeFunc is the clock of the trace log, replaced in tests.
var CurrentTimeFunc = time.Now

func StartRequest(c *gin.Context) {
	c.Set(requestStartKey, CurrentTimeFunc())
}

// TraceLog writes one line per request once every other handler is done, at error level for 5xx.
func TraceLog(c *gin.Context) {
	c.Next()

	logger := c.MustGet("logger").(*zerolog.Logger)
	startTime := c.MustGet(requestStartKey).(time.Time)

	event := logger.Info()
	if c.Writer.Status() >= 500 {
		event = logger.Error()
	}

	event.
		Str("label", "trace").
		Str("method", c.Request.Method).
		Str("url", c.Request.URL.Path).
		Str("route", c.FullPath()).
		Int("code", c.Writer.Status()).
		Int("size", c.Writer.Size()).
		Float64("duration", CurrentTimeFunc().Sub(startTime).Seconds()).
		Msg("")
}
