// Package places holds the two record kinds placelink reconciles: OpenStreetMap
// relations from an Overpass-style export and Wikidata settlements from a SPARQL
// export. Both keep their original JSON object so matches can be written out
// with the full source data embedded.
package places

import (
	"encoding/json"

	"github.com/paulmach/osm"
)

// OSMRelation is one element of an OSM relation export.
// Lat and Lon are nil when the export does not carry that center axis.
type OSMRelation struct {
	ID   osm.RelationID
	Name string
	Lat  *float64
	Lon  *float64
	Raw  json.RawMessage
}

// Center returns the relation center when both axes are present.
func (r OSMRelation) Center() (lat, lon float64, ok bool) {
	if r.Lat == nil || r.Lon == nil {
		return 0, 0, false
	}
	return *r.Lat, *r.Lon, true
}

// WikidataSettlement is one row of a Wikidata settlement export.
// Coord uses WKT point notation, "Point(<lon> <lat>)".
type WikidataSettlement struct {
	Label     string
	Coord     string
	EntityURI string
	Raw       json.RawMessage
}

// MarshalJSON writes the original export object.
func (r OSMRelation) MarshalJSON() ([]byte, error) {
	return rawOrNull(r.Raw), nil
}

// MarshalJSON writes the original export object.
func (s WikidataSettlement) MarshalJSON() ([]byte, error) {
	return rawOrNull(s.Raw), nil
}

func rawOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
