// Package cmdutil provides shared flags for placelink commands.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/placelink/placelink/pkg/constants"
)

// MatchFlags holds flags for the match command.
type MatchFlags struct {
	OSM             string
	Wikidata        string
	JSON            string
	CSV             string
	Tolerance       float64
	ZeroAsAbsent    bool
	AllowEmptyNames bool
}

// AddMatchFlags adds matching flags to a command.
func AddMatchFlags(cmd *cobra.Command) *MatchFlags {
	flags := &MatchFlags{}

	cmd.Flags().StringVar(&flags.OSM, "osm", "",
		"OSM relations export (JSON, optionally .gz)")
	cmd.Flags().StringVar(&flags.Wikidata, "wikidata", "",
		"Wikidata settlements export (JSON, optionally .gz)")
	cmd.Flags().StringVar(&flags.JSON, "json", constants.DefaultMatchesJSON,
		"Write matches as JSON to this file (empty to skip)")
	cmd.Flags().StringVar(&flags.CSV, "csv", constants.DefaultMatchesCSV,
		"Write the name,wd_qid,osm_id table to this file (empty to skip)")
	cmd.Flags().Float64Var(&flags.Tolerance, "tolerance", constants.CoordinateTolerance,
		"Per-axis coordinate tolerance in degrees")
	cmd.Flags().BoolVar(&flags.ZeroAsAbsent, "zero-as-absent", false,
		"Treat an OSM center coordinate of exactly 0 as missing")
	cmd.Flags().BoolVar(&flags.AllowEmptyNames, "allow-empty-names", false,
		"Let two records without a name match on coordinates alone")

	_ = cmd.MarkFlagRequired("osm")
	_ = cmd.MarkFlagRequired("wikidata")

	return flags
}

// PushFlags holds flags shared by the push subcommands.
type PushFlags struct {
	CSV         string
	Commit      bool
	AutoApprove bool
	Delay       time.Duration
	Journal     string
	Report      string
	Comment     string
}

// AddPushFlags adds write-back flags to a command. defaultDelay is the
// service's pacing.
func AddPushFlags(cmd *cobra.Command, defaultDelay time.Duration) *PushFlags {
	flags := &PushFlags{}

	cmd.Flags().StringVar(&flags.CSV, "csv", constants.DefaultMatchesCSV,
		"Matches table to push")
	cmd.Flags().BoolVar(&flags.Commit, "commit", false,
		"Write changes (default is a preview)")
	cmd.Flags().BoolVarP(&flags.AutoApprove, "yes", "y", false,
		"Skip the confirmation prompt for --commit")
	cmd.Flags().DurationVar(&flags.Delay, "delay", defaultDelay,
		"Minimum delay between items")
	cmd.Flags().StringVar(&flags.Journal, "journal", "",
		"Resume journal file, e.g. "+constants.DefaultJournalFile)
	cmd.Flags().StringVar(&flags.Report, "report", "",
		"Write a JSON or YAML run report to this file")

	return flags
}

// AuthFlags holds flags for 'auth osm'.
type AuthFlags struct {
	Listen      string
	RedirectURL string
	TLSCert     string
	TLSKey      string
	TokenFile   string
}

// AddAuthFlags adds OAuth callback server flags to a command.
func AddAuthFlags(cmd *cobra.Command) *AuthFlags {
	flags := &AuthFlags{}

	cmd.Flags().StringVar(&flags.Listen, "listen", constants.DefaultCallbackAddr,
		"Callback server address")
	cmd.Flags().StringVar(&flags.RedirectURL, "redirect-url", "",
		"Redirect URL registered with OpenStreetMap (default derived from --listen)")
	cmd.Flags().StringVar(&flags.TLSCert, "tls-cert", "",
		"TLS certificate file for the callback server")
	cmd.Flags().StringVar(&flags.TLSKey, "tls-key", "",
		"TLS key file for the callback server")
	cmd.Flags().StringVar(&flags.TokenFile, "token-file", "",
		"Where to store the token (default OSM_TOKEN_FILE or "+constants.DefaultTokenFile+")")

	return flags
}
