package wikibase

import (
	"context"
	"net/url"

	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
)

type tokensResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
}

type loginResponse struct {
	Login struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
		Name   string `json:"lgusername"`
	} `json:"login"`
}

// anonymousToken is what MediaWiki hands out as CSRF token to logged-out users.
const anonymousToken = `+\`

// Login performs a bot password login unless a bearer token is configured.
// It is safe to call more than once.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.loggedIn || c.creds.AccessToken != "" {
		return nil
	}
	if c.creds.Username == "" || c.creds.Password == "" {
		return errors.NewAuthenticationError(ServiceName, "botpassword", "no credentials configured", errors.ErrCredentialsRequired)
	}

	var tokens tokensResponse
	if err := c.call(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {"login"},
	}, &tokens); err != nil {
		return errors.NewAuthenticationError(ServiceName, "botpassword", "failed to fetch login token", err)
	}

	var login loginResponse
	if err := c.call(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {c.creds.Username},
		"lgpassword": {c.creds.Password},
		"lgtoken":    {tokens.Query.Tokens.LoginToken},
	}, &login); err != nil {
		return errors.NewAuthenticationError(ServiceName, "botpassword", "login request failed", err)
	}
	if login.Login.Result != "Success" {
		return errors.NewAuthenticationError(ServiceName, "botpassword",
			"login "+login.Login.Result+": "+login.Login.Reason, errors.ErrCredentialsInvalid)
	}

	logging.FromContext(ctx).Debug().Str("user", login.Login.Name).Msg("Logged in to Wikidata")
	c.loggedIn = true
	return nil
}

// csrfToken returns the cached edit token, logging in and fetching it first
// when needed.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.csrf != "" {
		return c.csrf, nil
	}
	if err := c.loginLocked(ctx); err != nil {
		return "", err
	}

	var tokens tokensResponse
	if err := c.call(ctx, url.Values{"action": {"query"}, "meta": {"tokens"}}, &tokens); err != nil {
		return "", err
	}
	token := tokens.Query.Tokens.CSRFToken
	if token == "" || token == anonymousToken {
		return "", errors.NewAuthenticationError(ServiceName, c.http.Auth().Method(), "session is not logged in", errors.ErrCredentialsInvalid)
	}
	c.csrf = token
	return token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.csrf = ""
	c.mu.Unlock()
}

// VerifyAuth checks that the credentials yield an edit token.
func (c *Client) VerifyAuth(ctx context.Context) error {
	_, err := c.csrfToken(ctx)
	return err
}
