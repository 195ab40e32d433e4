package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
	Method() string
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// Method returns the authentication method name.
func (a *NoAuth) Method() string { return "none" }

// BearerAuth implements OAuth 2 bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// Method returns the authentication method name.
func (a *BearerAuth) Method() string { return "oauth2" }

// BasicAuth implements HTTP basic authentication.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) {
	if a.Username == "" {
		return
	}
	req.SetBasicAuth(a.Username, a.Password)
}

// Method returns the authentication method name.
func (a *BasicAuth) Method() string { return "basic" }

// Pick returns bearer auth when a token is set, basic auth when a username is
// set and NoAuth otherwise.
func Pick(token, username, password string) Authenticator {
	switch {
	case token != "":
		return &BearerAuth{Token: token}
	case username != "":
		return &BasicAuth{Username: username, Password: password}
	default:
		return &NoAuth{}
	}
}
