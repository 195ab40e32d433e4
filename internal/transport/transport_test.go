package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placelink/placelink/pkg/errors"
)

func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&NoAuth{}).Apply(req)
	assert.Empty(t, req.Header)
}

func TestBearerAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&BearerAuth{Token: "tok"}).Apply(req)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	empty := &http.Request{Header: make(http.Header)}
	(&BearerAuth{}).Apply(empty)
	assert.Empty(t, empty.Header.Get("Authorization"))
}

func TestBasicAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&BasicAuth{Username: "mapper", Password: "secret"}).Apply(req)
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "mapper", user)
	assert.Equal(t, "secret", pass)
}

func TestPick(t *testing.T) {
	assert.IsType(t, &BearerAuth{}, Pick("tok", "user", "pw"))
	assert.IsType(t, &BasicAuth{}, Pick("", "user", "pw"))
	assert.IsType(t, &NoAuth{}, Pick("", "", "pw"))
	assert.Equal(t, "oauth2", Pick("tok", "", "").Method())
}

func TestClientSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "placelink-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "wbgetclaims", r.PostForm.Get("action"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c := New("test", &BearerAuth{Token: "tok"}, WithUserAgent("placelink-test/1.0"))

	resp, err := c.Get(context.Background(), server.URL, "application/json")
	require.NoError(t, err)
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeResponse(resp, "test", &out))
	assert.True(t, out.OK)

	resp, err = c.PostForm(context.Background(), server.URL, url.Values{"action": {"wbgetclaims"}})
	require.NoError(t, err)
	_, err = ReadBody(resp, "test")
	require.NoError(t, err)
}

func TestReadBodyStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusGone, errors.ErrNotFound},
		{http.StatusTooManyRequests, errors.ErrRateLimited},
		{http.StatusBadGateway, errors.ErrServiceUnavailable},
		{http.StatusUnauthorized, errors.ErrCredentialsInvalid},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer server.Close()

			resp, err := New("osm", nil).Get(context.Background(), server.URL, "")
			require.NoError(t, err)

			_, err = ReadBody(resp, "osm")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestClientCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("osm", nil).Get(ctx, server.URL, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := New("osm", nil).Get(context.Background(), addr, "")
	assert.ErrorIs(t, err, errors.ErrServiceUnavailable)
}
