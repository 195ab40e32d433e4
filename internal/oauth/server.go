// Package oauth runs the local callback server for the OpenStreetMap OAuth 2
// authorization code flow and stores the resulting token.
package oauth

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
)

// Scope requested from OpenStreetMap.
const Scope = "write_api"

// Options configures the authorization flow.
type Options struct {
	ClientID     string
	ClientSecret string
	Listen       string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	TokenFile    string
	TLSCert      string
	TLSKey       string
	Logger       *zerolog.Logger
}

func (o *Options) defaults() {
	if o.Listen == "" {
		o.Listen = constants.DefaultCallbackAddr
	}
	if o.RedirectURL == "" {
		scheme := "http"
		if o.TLSCert != "" {
			scheme = "https"
		}
		o.RedirectURL = scheme + "://" + o.Listen + "/callback"
	}
	if o.AuthURL == "" {
		o.AuthURL = constants.DefaultOSMAuthURL
	}
	if o.TokenURL == "" {
		o.TokenURL = constants.DefaultOSMTokenURL
	}
	if o.TokenFile == "" {
		o.TokenFile = constants.DefaultTokenFile
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
}

// Server handles "/" (redirect to the provider) and "/callback" (code exchange).
type Server struct {
	opts   Options
	config *oauth2.Config
	router chi.Router

	mu     sync.Mutex
	states map[string]struct{}

	done chan *oauth2.Token
}

// NewServer validates opts and builds the router.
func NewServer(opts Options) (*Server, error) {
	opts.defaults()
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, errors.NewConfigError("oauth", "OSM_CLIENT_ID and OSM_CLIENT_SECRET are required", errors.ErrCredentialsRequired)
	}
	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return nil, errors.NewConfigError("oauth", "--tls-cert and --tls-key must be given together", errors.ErrInvalidInput)
	}

	s := &Server{
		opts: opts,
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       []string{Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  opts.AuthURL,
				TokenURL: opts.TokenURL,
			},
		},
		states: map[string]struct{}{},
		done:   make(chan *oauth2.Token, 1),
	}

	r := chi.NewRouter()
	r.Get("/", s.handleStart)
	r.Get("/callback", s.handleCallback)
	s.router = r

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartURL returns the local URL that begins the flow.
func (s *Server) StartURL() string {
	scheme := "http"
	if s.opts.TLSCert != "" {
		scheme = "https"
	}
	return scheme + "://" + s.opts.Listen + "/"
}

// Done delivers the token once the callback succeeded.
func (s *Server) Done() <-chan *oauth2.Token {
	return s.done
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s.mu.Lock()
	s.states[state] = struct{}{}
	s.mu.Unlock()

	http.Redirect(w, r, s.config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	log := s.opts.Logger

	if e := q.Get("error"); e != "" {
		log.Warn().Str("error", e).Str("description", q.Get("error_description")).Msg("Authorization denied")
		http.Error(w, "authorization failed: "+e, http.StatusBadRequest)
		return
	}

	state := q.Get("state")
	s.mu.Lock()
	_, known := s.states[state]
	delete(s.states, state)
	s.mu.Unlock()
	if !known {
		http.Error(w, "unknown or reused state", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	tok, err := s.config.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("Token exchange failed")
		http.Error(w, "token exchange failed", http.StatusBadGateway)
		return
	}

	if err := SaveToken(s.opts.TokenFile, tok); err != nil {
		log.Error().Err(err).Msg("Failed to save token")
		http.Error(w, "failed to save token", http.StatusInternalServerError)
		return
	}
	log.Info().Str("file", s.opts.TokenFile).Msg("Saved OSM access token")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<h2>Authorized</h2><p>Token saved to <code>%s</code>. You can close this window.</p>",
		html.EscapeString(s.opts.TokenFile))

	select {
	case s.done <- tok:
	default:
	}
}

// Run serves until a token has been obtained or ctx is cancelled.
func (s *Server) Run(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return nil, errors.WrapIO("listen", s.opts.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) (*oauth2.Token, error) {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: constants.DefaultTimeout,
	}

	var tok *oauth2.Token
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if s.opts.TLSCert != "" {
			err = srv.ServeTLS(ln, s.opts.TLSCert, s.opts.TLSKey)
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		var result error
		select {
		case tok = <-s.done:
		case <-gctx.Done():
			result = gctx.Err()
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.opts.Logger.Warn().Err(err).Msg("Callback server shutdown failed")
		}
		return result
	})

	if err := g.Wait(); err != nil {
		if tok != nil {
			return tok, nil
		}
		return nil, err
	}
	return tok, nil
}
