package bedbank

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/implementations/bedbank/json"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"bitbucket.org/crgw/hotel-hub/internal/tools/requesting"
	"github.com/rs/zerolog"
)

type authRequest struct {
	config Config
	logger *zerolog.Logger
	client *http.Client
	cache  *caching.Cacher
}

// Token returns the cached access token or fetches a new one.
func (a *authRequest) Token(ctx context.Context) (string, error) {
	var cachedToken string
	if a.cache.Fetch(ctx, a.getCacheKey(), &cachedToken) {
		return cachedToken, nil
	}

	response, e := requesting.RequestErrors(a.makeRequest(ctx))
	if e != nil {
		return "", fmt.Errorf("failed to authenticate: %w", e)
	}
	defer response.Body.Close()

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", schema.NewConnectionError(err.Error())
	}

	var authResponse json.AuthRS
	if err := jsonEncoding.Unmarshal(bodyBytes, &authResponse); err != nil || authResponse.AccessToken == "" {
		return "", schema.NewProviderError("invalid auth response")
	}

	err = a.cache.Store(ctx, a.getCacheKey(), authResponse.AccessToken, time.Duration(authResponse.ExpiresIn)*time.Second)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Unable to cache the auth token")
	}

	return authResponse.AccessToken, nil
}

func (a *authRequest) makeRequest(ctx context.Context) (*http.Response, error) {
	body := strings.NewReader(a.requestBody())

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/oauth/token", body)
	if err != nil {
		return nil, err
	}

	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.client.Do(httpRequest)
}

func (a *authRequest) requestBody() string {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", a.config.ClientID)
	data.Set("client_secret", a.config.ClientSecret)

	return data.Encode()
}

func (a *authRequest) getCacheKey() string {
	return fmt.Sprintf("bedbank-auth-token:%s-%s", a.config.BaseURL, a.config.ClientID)
}
