package middleware

import (
	"net/http"

	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"github.com/gin-gonic/gin"
)

const (
	ParamsKey string = "params"
)

// PrepareParams binds the JSON body into a new T, stored as *T under ParamsKey.
func PrepareParams[T any]() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		params := new(T)

		if err := ctx.ShouldBindJSON(params); err != nil {
			middleware.HandleError(ctx, http.StatusBadRequest, "Failed to bind request params", err)
			return
		}

		ctx.Set(ParamsKey, params)
	}
}
