package web

import (
	"fmt"
	"net/http"

	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func PanicRecovery(c *gin.Context) {
	gin.CustomRecoveryWithWriter(&recoveryWriter{
		logger: c.MustGet("logger").(*zerolog.Logger),
	}, func(c *gin.Context, recovered any) {
		var err error
		switch value := recovered.(type) {
		case error:
			err = value
		case string:
			err = fmt.Errorf("%s", value)
		}

		middleware.HandleError(c, http.StatusInternalServerError, "Unknown error, panic recovered", err)
	})(c)
}

type recoveryWriter struct {
	logger *zerolog.Logger
}

func (r *recoveryWriter) Write(p []byte) (n int, err error) {
	r.logger.
		Error().
		Str("label", "panic").
		Msg(string(p))

	return len(p), nil
}
