// Package restclient builds the default restrepo.HTTPClient from a restrepo.Config.
package restclient

import (
	"strings"

	resthttp "github.com/fivetwenty-io/restrepo/internal/http"
	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// New creates the default JSON transport: retries on 5xx, 429 and connection
// errors, DRF token auth, per request IDs and optional debug logging and
// metrics.
func New(config *restrepo.Config) (restrepo.HTTPClient, error) {
	if config == nil {
		return nil, restrepo.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, restrepo.ErrBaseURLRequired
	}

	// Normalize base URL
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	opts := []resthttp.Option{
		resthttp.WithLogger(config.Logger),
		resthttp.WithDebug(config.Debug),
		resthttp.WithTimeout(config.HTTPTimeout),
		resthttp.WithUserAgent(config.UserAgent),
		resthttp.WithHeaders(config.Headers),
		resthttp.WithTokenScheme(config.TokenScheme),
		resthttp.WithUnauthorizedHandler(config.OnUnauthorized),
	}

	if config.RetryMax != nil {
		opts = append(opts, resthttp.WithRetryMax(*config.RetryMax))
	}

	if config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		opts = append(opts, resthttp.WithRetryWait(config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.Metrics != nil {
		opts = append(opts, resthttp.WithMetrics(resthttp.NewMetrics(config.Metrics)))
	}

	var tokens resthttp.TokenSource
	if config.Token != "" {
		tokens = resthttp.StaticToken(config.Token)
	}

	return resthttp.NewClient(baseURL, tokens, opts...), nil
}

// NewWithEndpoint creates a new client with just a base URL (no auth).
func NewWithEndpoint(baseURL string) (restrepo.HTTPClient, error) {
	return New(&restrepo.Config{
		BaseURL: baseURL,
	})
}

// NewWithToken creates a new client with a base URL and a DRF token.
func NewWithToken(baseURL, token string) (restrepo.HTTPClient, error) {
	return New(&restrepo.Config{
		BaseURL: baseURL,
		Token:   token,
	})
}
