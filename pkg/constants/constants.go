// Package constants provides shared constants used throughout placelink.
// This includes timeouts, pacing delays, file permissions, endpoints and
// the identifiers written back to Wikidata and OpenStreetMap.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to remote APIs
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the local OAuth callback server
	ShutdownTimeout = 5 * time.Second

	// AuthFlowTimeout is how long the OAuth flow waits for the browser callback
	AuthFlowTimeout = 5 * time.Minute
)

// Pacing constants for write-back
const (
	// DefaultWikidataDelay is the pause between consecutive Wikidata edits
	DefaultWikidataDelay = 2 * time.Second

	// DefaultOSMDelay is the pause between consecutive OpenStreetMap edits
	DefaultOSMDelay = 1 * time.Second

	// MaxLag is the maxlag parameter sent with Wikidata write requests
	MaxLag = 5
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like OAuth tokens (rw-------)
	SecureFilePermissions = 0600
)

// Matching constants
const (
	// CoordinateTolerance is the absolute per-axis tolerance, in degrees
	CoordinateTolerance = 0.01

	// MatchTypeNameAndCoordinates labels every record produced by the matcher
	MatchTypeNameAndCoordinates = "name-and-coordinates"
)

// Wikidata identifiers
const (
	// PropertyOSMRelationID is the Wikidata property "OpenStreetMap relation ID"
	PropertyOSMRelationID = "P402"

	// PropertyImportedFrom is the Wikidata property "imported from Wikimedia project"
	PropertyImportedFrom = "P143"

	// ItemOpenStreetMap is the Wikidata item for OpenStreetMap, used as reference value
	ItemOpenStreetMap = "Q16960"

	// TagWikidata is the OSM tag key holding a Wikidata item ID
	TagWikidata = "wikidata"
)

// Endpoint defaults
const (
	// DefaultWikidataAPIURL is the MediaWiki Action API endpoint for Wikidata
	DefaultWikidataAPIURL = "https://www.wikidata.org/w/api.php"

	// DefaultOSMAPIURL is the OpenStreetMap API base URL
	DefaultOSMAPIURL = "https://api.openstreetmap.org"

	// DefaultOSMAuthURL is the OpenStreetMap OAuth 2.0 authorization endpoint
	DefaultOSMAuthURL = "https://www.openstreetmap.org/oauth2/authorize"

	// DefaultOSMTokenURL is the OpenStreetMap OAuth 2.0 token endpoint
	DefaultOSMTokenURL = "https://www.openstreetmap.org/oauth2/token"

	// DefaultCallbackAddr is where the local OAuth callback server listens
	DefaultCallbackAddr = "127.0.0.1:5678"

	// DefaultUserAgent identifies placelink to remote APIs
	DefaultUserAgent = "placelink/dev (https://github.com/placelink/placelink)"
)

// Path constants
const (
	// DefaultConfigFile is the name of the optional config file
	DefaultConfigFile = ".placelink.yaml"

	// DefaultTokenFile is where the OSM OAuth access token is stored
	DefaultTokenFile = "osm_token.json"

	// DefaultJournalFile is the default bbolt journal path
	DefaultJournalFile = ".placelink.db"

	// DefaultMatchesCSV is the default interchange CSV
	DefaultMatchesCSV = "matches.csv"

	// DefaultMatchesJSON is the default match output file
	DefaultMatchesJSON = "matches.json"
)

