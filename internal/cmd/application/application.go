// Package application defines what placelink commands need from the running
// application. Commands accept the Application interface rather than the
// concrete app type so they can be tested with Mock.
//
// Usage in commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            creds := app.Credentials()
//	            // ...
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/placelink/placelink/internal/config"
)

// Application provides the application interface that commands need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Credentials returns write-back credentials and endpoints. An OSM
	// access token stored by 'placelink auth osm' is already filled in.
	Credentials() config.Credentials

	// OutputFormat returns the configured output format (table, json, yaml, csv).
	OutputFormat() string

	// Quiet reports whether banners and progress output are suppressed.
	Quiet() bool

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
