package apiclient

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default cookie-jar client. The caller's client
// must keep cookies between calls for refreshes to work.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each round trip of the default HTTP client.
// Defaults to 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithNavigator sets where the user is redirected when the session expires.
// Without one, expired sessions are cleared but nothing navigates.
func WithNavigator(nav guard.Navigator) Option {
	return func(c *Client) {
		c.nav = nav
	}
}

// WithPublicEndpoints replaces DefaultPublicEndpoints.
func WithPublicEndpoints(p PublicEndpoints) Option {
	return func(c *Client) {
		c.public = p
	}
}

// WithRefreshPath overrides the refresh endpoint. Defaults to
// /user/refresh_access_token.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithClassifier replaces DefaultClassifier.
func WithClassifier(fn Classifier) Option {
	return func(c *Client) {
		c.classify = fn
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}
