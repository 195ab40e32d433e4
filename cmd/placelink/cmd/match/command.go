// Package match provides the match command.
package match

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/cmd/cmdutil"
	"github.com/placelink/placelink/internal/cmd/output"
	"github.com/placelink/placelink/pkg/logging"
	"github.com/placelink/placelink/pkg/match"
	"github.com/placelink/placelink/pkg/places"
	"github.com/placelink/placelink/pkg/save"
)

// NewCommand creates the match command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.MatchFlags

	cmd := &cobra.Command{
		Use:     "match",
		GroupID: "core",
		Short:   "Match OSM relations with Wikidata settlements",
		Long: `Match loads an OpenStreetMap relations export and a Wikidata settlements
export and pairs every Wikidata item with every OSM relation whose normalized
name equals the item's label and whose center lies within --tolerance degrees
of the item's coordinates on both axes.

Matches are written to --json and --csv and printed in the selected format.
The CSV is the input of 'placelink push'.`,
		Example: `  placelink match --osm osm.json --wikidata wikidata.json
  placelink match --osm osm.json.gz --wikidata wikidata.json --csv berlin.csv --json ""
  placelink match --osm osm.json --wikidata wikidata.json -o csv > matches.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	flags = cmdutil.AddMatchFlags(cmd)

	return cmd
}

func run(cmd *cobra.Command, app application.Application, flags *cmdutil.MatchFlags) error {
	logger := logging.FromContext(cmd.Context())

	rels, err := places.LoadOSMExport(flags.OSM)
	if err != nil {
		return err
	}
	wd, err := places.LoadWikidataExport(flags.Wikidata)
	if err != nil {
		return err
	}
	logger.Debug().
		Int("osm_relations", len(rels)).
		Int("wikidata_items", len(wd)).
		Msg("Loaded exports")

	opts := []match.Option{
		match.WithTolerance(flags.Tolerance),
		match.WithLogger(logger),
	}
	if flags.ZeroAsAbsent {
		opts = append(opts, match.WithZeroAsAbsent())
	}
	if flags.AllowEmptyNames {
		opts = append(opts, match.WithEmptyNames())
	}

	records, stats := match.FindMatchesWithStats(wd, rels, opts...)

	if flags.JSON != "" {
		if err := save.JSONFile(flags.JSON, records); err != nil {
			return err
		}
		logger.Info().Str("file", flags.JSON).Int("matches", len(records)).Msg("Wrote JSON")
	}
	if flags.CSV != "" {
		if err := save.CSVFile(flags.CSV, records); err != nil {
			return err
		}
		logger.Info().Str("file", flags.CSV).Int("matches", len(records)).Msg("Wrote CSV")
	}

	if err := printMatches(cmd.OutOrStdout(), app.OutputFormat(), records); err != nil {
		return err
	}

	if !app.Quiet() {
		printSummary(cmd.ErrOrStderr(), stats)
	}
	return nil
}

func printMatches(w io.Writer, explicit string, records []match.Record) error {
	format := output.DetectFormat(explicit)
	matches := output.Matches(records)

	switch format {
	case output.FormatJSON:
		return save.WriteJSON(w, records)
	case output.FormatYAML:
		return output.NewFormatter(format).Format(w, matches.Rows())
	default:
		return output.NewFormatter(format).Format(w, matches)
	}
}

func printSummary(w io.Writer, stats match.Stats) {
	fmt.Fprintln(w)
	_ = output.NewFormatter(output.FormatTable).Format(w, output.Stats(stats))
	fmt.Fprintf(w, "Found %d matches (%d Wikidata items x %d OSM relations, %d name hits)\n",
		stats.Matches, stats.WikidataRecords, stats.OSMRecords, stats.NameHits)
	if stats.UnparsedCoords > 0 || stats.MissingCenters > 0 {
		fmt.Fprintf(w, "Skipped positions: %d unparsable Wikidata coordinates, %d OSM relations without center\n",
			stats.UnparsedCoords, stats.MissingCenters)
	}
}
