package middleware_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/platform/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type platformStub struct{}

type factoryStub struct{}

func (f *factoryStub) GetPlatform(name string) (any, error) {
	switch name {
	case "bedbank":
	case "broken":
		return nil, fmt.Errorf("platform %s: no credentials", name)
	default:
		return nil, fmt.Errorf("platform %s: %w", name, errors.ErrorUnknownPlatform)
	}

	return &platformStub{}, nil
}

type bindable struct {
	HotelID string `json:"hotelId" binding:"required"`
}

func newRouter(log *zerolog.Logger, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.LoggerKey, log)
	})

	router.POST("/:platform/availability",
		middleware.PreparePlatform(&factoryStub{}),
		middleware.TapLogger,
		middleware.PrepareParams[bindable](),
		handler,
	)

	return router
}

func TestPlatformMiddlewares(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	tests := []struct {
		name         string
		path         string
		body         string
		expectedCode int
		handlerCalls int
	}{
		{name: "known platform", path: "/bedbank/availability", body: `{"hotelId":"123"}`, expectedCode: http.StatusOK, handlerCalls: 1},
		{name: "platform name is case insensitive", path: "/BedBank/availability", body: `{"hotelId":"123"}`, expectedCode: http.StatusOK, handlerCalls: 1},
		{name: "platform fails to start", path: "/broken/availability", body: `{"hotelId":"123"}`, expectedCode: http.StatusInternalServerError},
		{name: "unknown platform", path: "/other/availability", body: `{"hotelId":"123"}`, expectedCode: http.StatusNotFound},
		{name: "missing required field", path: "/bedbank/availability", body: `{}`, expectedCode: http.StatusBadRequest},
		{name: "broken json", path: "/bedbank/availability", body: `{"hotelId":`, expectedCode: http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			calls := 0

			router := newRouter(&log, func(c *gin.Context) {
				calls++

				_, ok := c.MustGet(middleware.PlatformKey).(*platformStub)
				assert.True(t, ok)

				params, ok := c.MustGet(middleware.ParamsKey).(*bindable)
				require.True(t, ok)
				assert.Equal(t, "123", params.HotelID)

				c.MustGet(middleware.LoggerKey).(*zerolog.Logger).Info().Msg("tapped")
				c.Status(http.StatusOK)
			})

			response := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodPost, test.path, strings.NewReader(test.body))
			require.NoError(t, err)

			router.ServeHTTP(response, request)

			assert.Equal(t, test.expectedCode, response.Code)
			assert.Equal(t, test.handlerCalls, calls)
		})
	}

	assert.Contains(t, out.String(), `"platform":"bedbank"`)
	assert.Contains(t, out.String(), `"operationId"`)
}
