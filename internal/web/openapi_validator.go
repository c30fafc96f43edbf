package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// OpenapiValidator rejects requests that do not match the OpenAPI document.
// Routes the document does not describe pass through untouched.
func OpenapiValidator(spec []byte) (gin.HandlerFunc, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(c *gin.Context) {
		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				middleware.HandleError(c, http.StatusBadRequest, "Failed to read request body", err)
				return
			}

			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		err = openapi3filter.ValidateRequest(c.Request.Context(), &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		})

		if body != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		if err != nil {
			middleware.HandleError(c, http.StatusBadRequest, "Request does not match the API", err)
			return
		}
	}, nil
}
