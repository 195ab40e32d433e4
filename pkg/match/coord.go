package match

import (
	"math"
	"strconv"
	"strings"
)

// Coord is a WGS84 position in decimal degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseWikidataCoord parses WKT point notation as produced by the Wikidata
// query service, "Point(<lon> <lat>)". Note the longitude comes first.
// ok is false for anything that is not exactly two finite numbers.
func ParseWikidataCoord(s string) (Coord, bool) {
	s = strings.ReplaceAll(s, "Point(", "")
	s = strings.ReplaceAll(s, ")", "")

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Coord{}, false
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || !finite(lon) {
		return Coord{}, false
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || !finite(lat) {
		return Coord{}, false
	}

	return Coord{Lat: lat, Lon: lon}, true
}

// Near reports whether both axes differ by at most tol degrees.
func (c Coord) Near(other Coord, tol float64) bool {
	return math.Abs(c.Lat-other.Lat) <= tol && math.Abs(c.Lon-other.Lon) <= tol
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
