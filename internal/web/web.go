package web

import (
	"net/http"
	"time"

	"bitbucket.org/crgw/hotel-hub/api"
	"bitbucket.org/crgw/hotel-hub/internal/platform"
	"bitbucket.org/crgw/hotel-hub/internal/platform/factory"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func SetupRouter(
	log *zerolog.Logger,
	env string,
	platforms *factory.Factory,
	deps platform.Dependencies,
) (*gin.Engine, error) {
	startTime := time.Now()

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator, err := OpenapiValidator(api.Spec)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	router.
		Use(StartRequest).
		Use(CorrelationId).
		Use(RegisterLogger(log)).
		Use(TraceLog).
		Use(PanicRecovery).
		Use(validator)

	router.GET("/status", func(c *gin.Context) {
		response := struct {
			Uptime float64 `json:"uptime"`
		}{
			Uptime: time.Since(startTime).Seconds(),
		}

		c.JSON(http.StatusOK, response)
	})

	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.Spec)
	})

	pprof.Register(router)

	platform.RegisterRoutes(router, platforms, deps)

	return router, nil
}
