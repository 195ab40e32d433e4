// Package transport provides the HTTP client shared by the Wikidata and
// OpenStreetMap API clients: authentication, User-Agent and response decoding.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// Client provides HTTP client functionality with authentication.
type Client struct {
	service   string
	http      *http.Client
	auth      Authenticator
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCookies keeps session cookies between requests.
func WithCookies() Option {
	return func(c *Client) {
		jar, _ := cookiejar.New(nil)
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}
}

// New creates a transport client for service with the given authenticator.
func New(service string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		service:   service,
		http:      &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:      auth,
		userAgent: constants.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Auth returns the configured authenticator.
func (c *Client) Auth() Authenticator {
	return c.auth
}

// Do performs an HTTP request with authentication and User-Agent applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: req.URL.Redacted(),
			Message:  "request failed",
			Err:      errors.Join(errors.ErrServiceUnavailable, err),
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", rawURL, err.Error())
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Do(req)
}

// PostForm performs a form-encoded POST.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	return c.Send(ctx, http.MethodPost, rawURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// Send performs a request with a body of the given content type.
func (c *Client) Send(ctx context.Context, method, rawURL, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.NewValidationError("url", rawURL, err.Error())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}
