package oauth

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
)

func fakeTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"scope":        Scope,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tokens := fakeTokenEndpoint(t)
	tokenFile := filepath.Join(t.TempDir(), "osm_token.json")

	s, err := NewServer(Options{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthURL:      "https://osm.example/oauth2/authorize",
		TokenURL:     tokens.URL,
		TokenFile:    tokenFile,
		Logger:       logging.NewNopLogger(),
	})
	require.NoError(t, err)
	return s, tokenFile
}

func startFlow(t *testing.T, s *Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "osm.example", loc.Host)
	assert.Equal(t, Scope, loc.Query().Get("scope"))
	assert.Equal(t, "client", loc.Query().Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:5678/callback", loc.Query().Get("redirect_uri"))

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func callback(s *Server, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rec
}

func TestCallbackSavesToken(t *testing.T) {
	s, tokenFile := newTestServer(t)
	state := startFlow(t, s)

	rec := callback(s, "code=good-code&state="+state)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorized")

	select {
	case tok := <-s.Done():
		assert.Equal(t, "tok-123", tok.AccessToken)
	default:
		t.Fatal("token not delivered")
	}

	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", loaded.AccessToken)

	// state is single use
	rec = callback(s, "code=good-code&state="+state)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackRejects(t *testing.T) {
	tests := []struct {
		name  string
		query func(state string) string
		code  int
	}{
		{"unknown state", func(string) string { return "code=good-code&state=bogus" }, http.StatusBadRequest},
		{"missing code", func(s string) string { return "state=" + s }, http.StatusBadRequest},
		{"provider error", func(s string) string { return "error=access_denied&state=" + s }, http.StatusBadRequest},
		{"exchange failure", func(s string) string { return "code=bad-code&state=" + s }, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tokenFile := newTestServer(t)
			state := startFlow(t, s)

			rec := callback(s, tt.query(state))
			assert.Equal(t, tt.code, rec.Code)

			_, err := os.Stat(tokenFile)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(Options{})
	assert.ErrorIs(t, err, errors.ErrCredentialsRequired)

	_, err = NewServer(Options{ClientID: "a", ClientSecret: "b", TLSCert: "cert.pem"})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestServeStopsOnToken(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		tok *oauth2.Token
		err error
	}
	done := make(chan result, 1)
	go func() {
		tok, err := s.Serve(ctx, ln)
		done <- result{tok, err}
	}()

	state := startFlow(t, s)
	resp, err := http.Get("http://" + ln.Addr().String() + "/callback?code=good-code&state=" + state)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "tok-123", r.tok.AccessToken)
}

func TestServeCanceled(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tok, err := s.Serve(ctx, ln)
	assert.Nil(t, tok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadTokenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadToken(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0o600))
	_, err = LoadToken(empty)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`not json`), 0o600))
	_, err = LoadToken(garbage)
	assert.Error(t, err)
}
