package requesting

import (
	"fmt"
	"net/http"
	"os"

	"bitbucket.org/crgw/hotel-hub/internal/schema"
)

func isValidResponse(code int) bool {
	return code >= 200 && code <= 299
}

// RequestErrors turns a failed round-trip or a non 2xx response into a provider error.
// The body of a rejected response is closed.
func RequestErrors(response *http.Response, err error) (*http.Response, *schema.ProviderResponseError) {
	if err != nil {
		if os.IsTimeout(err) {
			return nil, schema.NewTimeoutError(err.Error())
		}

		return nil, schema.NewConnectionError(err.Error())
	}

	if !isValidResponse(response.StatusCode) {
		response.Body.Close()
		return nil, schema.NewProviderError(fmt.Sprintf("provider returned status code %d", response.StatusCode))
	}

	return response, nil
}
