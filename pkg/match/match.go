// Package match pairs Wikidata settlements with OpenStreetMap relations.
//
// A pair matches when the normalized Wikidata label equals the normalized OSM
// name and the two positions agree within a small absolute tolerance on both
// axes. Every Wikidata record is compared with every OSM record, so inputs are
// expected to be pre-filtered to one region. Matching performs no I/O and keeps
// no state between calls.
package match

import (
	"github.com/paulmach/osm"
	"github.com/rs/zerolog"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/normalize"
	"github.com/placelink/placelink/pkg/places"
)

// Type names the criteria that produced a match.
type Type string

// NameAndCoordinates is the only match type: equal names and nearby positions.
const NameAndCoordinates Type = constants.MatchTypeNameAndCoordinates

// Record is one matched pair. Duplicates are possible when several records on
// one side share a name and position.
type Record struct {
	Wikidata  places.WikidataSettlement
	OSM       places.OSMRelation
	MatchType Type
	Name      string
	QID       string
	OSMID     osm.RelationID
}

// Stats counts what happened during one matching run.
type Stats struct {
	WikidataRecords int `json:"wikidata_records" yaml:"wikidata_records"`
	OSMRecords      int `json:"osm_records" yaml:"osm_records"`
	Comparisons     int `json:"comparisons" yaml:"comparisons"`
	NameHits        int `json:"name_hits" yaml:"name_hits"`
	CoordHits       int `json:"coord_hits" yaml:"coord_hits"`
	Matches         int `json:"matches" yaml:"matches"`
	UnparsedCoords  int `json:"unparsed_coords" yaml:"unparsed_coords"`
	MissingCenters  int `json:"missing_centers" yaml:"missing_centers"`
}

// Matcher holds matching options. The zero value is not usable; use New.
type Matcher struct {
	tolerance       float64
	zeroAsAbsent    bool
	allowEmptyNames bool
	logger          *zerolog.Logger
}

// New returns a Matcher with the default 0.01 degree tolerance.
func New(opts ...Option) *Matcher {
	m := defaultMatcher()
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tolerance returns the configured per-axis tolerance in degrees.
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// FindMatches compares every Wikidata record with every OSM record and returns
// the matches in Wikidata-major order.
func FindMatches(wd []places.WikidataSettlement, rels []places.OSMRelation, opts ...Option) []Record {
	return New(opts...).FindMatches(wd, rels)
}

// FindMatchesWithStats is FindMatches with run counters.
func FindMatchesWithStats(wd []places.WikidataSettlement, rels []places.OSMRelation, opts ...Option) ([]Record, Stats) {
	return New(opts...).FindMatchesWithStats(wd, rels)
}

// FindMatches compares every Wikidata record with every OSM record.
func (m *Matcher) FindMatches(wd []places.WikidataSettlement, rels []places.OSMRelation) []Record {
	records, _ := m.FindMatchesWithStats(wd, rels)
	return records
}

type wikidataKey struct {
	name     string
	coord    Coord
	hasCoord bool
	qid      string
}

type osmKey struct {
	name      string
	center    Coord
	hasCenter bool
}

// FindMatchesWithStats compares every Wikidata record with every OSM record and
// also reports counters for the run.
func (m *Matcher) FindMatchesWithStats(wd []places.WikidataSettlement, rels []places.OSMRelation) ([]Record, Stats) {
	stats := Stats{
		WikidataRecords: len(wd),
		OSMRecords:      len(rels),
	}

	wdKeys := make([]wikidataKey, len(wd))
	for i, s := range wd {
		coord, ok := ParseWikidataCoord(s.Coord)
		if !ok {
			stats.UnparsedCoords++
		}
		wdKeys[i] = wikidataKey{
			name:     normalize.Text(s.Label),
			coord:    coord,
			hasCoord: ok,
			qid:      ExtractQID(s.EntityURI),
		}
	}

	osmKeys := make([]osmKey, len(rels))
	for i, r := range rels {
		center, ok := m.center(r)
		if !ok {
			stats.MissingCenters++
		}
		osmKeys[i] = osmKey{
			name:      normalize.Text(r.Name),
			center:    center,
			hasCenter: ok,
		}
	}

	var records []Record
	for i, w := range wdKeys {
		for j, o := range osmKeys {
			stats.Comparisons++

			nameMatch := w.name == o.name && (w.name != "" || m.allowEmptyNames)
			coordMatch := w.hasCoord && o.hasCenter && w.coord.Near(o.center, m.tolerance)

			if nameMatch {
				stats.NameHits++
			}
			if coordMatch {
				stats.CoordHits++
			}
			if !nameMatch || !coordMatch {
				continue
			}

			records = append(records, Record{
				Wikidata:  wd[i],
				OSM:       rels[j],
				MatchType: NameAndCoordinates,
				Name:      wd[i].Label,
				QID:       w.qid,
				OSMID:     rels[j].ID,
			})
		}
	}
	stats.Matches = len(records)

	m.logger.Debug().
		Int("wikidata", stats.WikidataRecords).
		Int("osm", stats.OSMRecords).
		Int("comparisons", stats.Comparisons).
		Int("name_hits", stats.NameHits).
		Int("coord_hits", stats.CoordHits).
		Int("matches", stats.Matches).
		Float64("tolerance", m.tolerance).
		Msg("Matching complete")

	return records, stats
}

func (m *Matcher) center(r places.OSMRelation) (Coord, bool) {
	lat, lon, ok := r.Center()
	if !ok {
		return Coord{}, false
	}
	if m.zeroAsAbsent && (lat == 0 || lon == 0) {
		return Coord{}, false
	}
	return Coord{Lat: lat, Lon: lon}, true
}
