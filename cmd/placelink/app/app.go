// Package app provides the application context and dependency management
// for the placelink CLI. It centralizes configuration, logging and
// credentials so commands receive them through application.Application.
package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/internal/oauth"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
)

// App represents the placelink application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, empty for auto-detection.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether -q was given.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Credentials reads credentials from the configuration. When no OSM access
// token is configured but the token file exists, its token is used.
func (a *App) Credentials() config.Credentials {
	creds := config.FromViper(a.config.Viper())

	if creds.OSM.AccessToken == "" && creds.OSM.TokenFile != "" {
		if _, err := os.Stat(creds.OSM.TokenFile); err == nil {
			tok, err := oauth.LoadToken(creds.OSM.TokenFile)
			if err != nil {
				a.logger.Warn().Err(err).Str("file", creds.OSM.TokenFile).Msg("Ignoring unreadable OSM token file")
			} else {
				creds.OSM.AccessToken = tok.AccessToken
				a.logger.Debug().Str("file", creds.OSM.TokenFile).Msg("Using stored OSM access token")
			}
		}
	}

	return creds
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		if cfg == nil || cfg.v == nil {
			return errors.NewConfigError("app", "config has no viper instance", errors.ErrInvalidInput)
		}
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			logger = logging.NewNopLogger()
		}
		a.logger = logger
		return nil
	}
}

var _ application.Application = (*App)(nil)
