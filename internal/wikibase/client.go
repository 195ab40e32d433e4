// Package wikibase is a small MediaWiki Action API client for the Wikibase
// calls placelink needs: reading P402 claims and adding them with a reference.
package wikibase

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/internal/transport"
	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// ServiceName identifies Wikidata in logs, errors and the journal.
const ServiceName = "wikidata"

// Client talks to one Wikibase API endpoint.
type Client struct {
	api   string
	http  *transport.Client
	creds config.Wikidata

	mu       sync.Mutex
	loggedIn bool
	csrf     string
}

// New creates a client. An access token is sent as a bearer token; otherwise
// a bot password login is performed on first write.
func New(creds config.Wikidata, userAgent string, opts ...transport.Option) *Client {
	api := creds.APIURL
	if api == "" {
		api = constants.DefaultWikidataAPIURL
	}

	var auth transport.Authenticator = &transport.NoAuth{}
	if creds.AccessToken != "" {
		auth = &transport.BearerAuth{Token: creds.AccessToken}
	}

	opts = append([]transport.Option{transport.WithUserAgent(userAgent), transport.WithCookies()}, opts...)
	return &Client{
		api:   api,
		http:  transport.New(ServiceName, auth, opts...),
		creds: creds,
	}
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type envelope struct {
	Error *apiError `json:"error"`
}

// call posts params to the API and decodes the JSON reply into out.
// An error envelope becomes an APIError carrying the API error code.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	resp, err := c.http.PostForm(ctx, c.api, params)
	if err != nil {
		return err
	}
	body, err := transport.ReadBody(resp, ServiceName)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.WrapParse("json", ServiceName+" response", err)
	}
	if env.Error != nil {
		return &errors.APIError{
			Service:    ServiceName,
			StatusCode: resp.StatusCode,
			Code:       env.Error.Code,
			Message:    env.Error.Info,
			Endpoint:   params.Get("action"),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapParse("json", ServiceName+" response", err)
	}
	return nil
}

func apiCode(err error) string {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
