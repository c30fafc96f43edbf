package middleware

import (
	"net/http"
	"strings"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"github.com/gin-gonic/gin"
)

type factory interface {
	GetPlatform(string) (any, error)
}

const (
	PlatformKey string = "platform"
)

// PreparePlatform resolves the inventory platform named in the path, case insensitive.
func PreparePlatform(f factory) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		name := strings.ToLower(ctx.Params.ByName("platform"))

		platform, err := f.GetPlatform(name)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.IsUnknownPlatform(err) {
				status = http.StatusNotFound
			}

			middleware.HandleError(ctx, status, "Failed to find platform service", err)
			return
		}

		ctx.Set(PlatformKey, platform)
	}
}
