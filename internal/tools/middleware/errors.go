package middleware

import (
	"net/http"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorStatus maps the error taxonomy to a response status, fallback is used for anything unknown.
func ErrorStatus(err error, fallback int) int {
	switch {
	case err == nil:
		return fallback
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsConflict(err):
		return http.StatusConflict
	case errors.IsProviderUnavailable(err):
		return http.StatusBadGateway
	}

	return fallback
}

// HandleError logs the error and aborts the request with a JSON error body.
func HandleError(ctx *gin.Context, status int, message string, err error) {
	log := zerolog.Ctx(ctx.Request.Context())
	if logger, ok := ctx.Get("logger"); ok {
		log = logger.(*zerolog.Logger)
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}

	event.
		Err(err).
		Int("code", status).
		Msg(message)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}

	ctx.AbortWithStatusJSON(status, response)
}
