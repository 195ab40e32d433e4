package output

import (
	"fmt"
	"strconv"

	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/pkg/match"
	"github.com/placelink/placelink/pkg/propagate"
	"github.com/placelink/placelink/pkg/save"
)

// Matches lays out match records as name, QID and relation ID.
type Matches []match.Record

// TableData implements Tabular.
func (m Matches) TableData() Data {
	rows := make([][]string, 0, len(m))
	for _, r := range m {
		rows = append(rows, []string{r.Name, r.QID, strconv.FormatInt(int64(r.OSMID), 10)})
	}
	return Data{
		Headers:         []string{save.ColumnName, save.ColumnQID, save.ColumnOSMID},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// Stats lays out matcher counters as a two column table.
type Stats match.Stats

// TableData implements Tabular.
func (s Stats) TableData() Data {
	return keyValues(
		"Wikidata records", s.WikidataRecords,
		"OSM relations", s.OSMRecords,
		"Comparisons", s.Comparisons,
		"Name hits", s.NameHits,
		"Coordinate hits", s.CoordHits,
		"Matches", s.Matches,
		"Unparsed coordinates", s.UnparsedCoords,
		"Missing centers", s.MissingCenters,
	)
}

// Items lays out per-row write-back outcomes.
type Items []propagate.ItemResult

// TableData implements Tabular.
func (items Items) TableData() Data {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		outcome := string(it.Outcome)
		if it.FromJournal {
			outcome += " (journal)"
		}
		rows = append(rows, []string{
			strconv.Itoa(it.Index + 1),
			it.Name,
			it.QID,
			strconv.FormatInt(it.OSMID, 10),
			outcome,
			it.Error,
		})
	}
	return Data{
		Headers:         []string{"#", "Name", "QID", "OSM ID", "Outcome", "Error"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}

// Summary lays out a write-back run's counters.
type Summary propagate.Summary

// TableData implements Tabular.
func (s Summary) TableData() Data {
	return keyValues(
		"Target", s.Target,
		"Mode", s.Mode,
		"Rows", s.Total,
		"Processed", s.Processed,
		"Succeeded", s.Succeeded,
		"Already linked", s.Skipped,
		"Conflicts", s.Conflicts,
		"Not found", s.NotFound,
		"Failed", s.Failed,
	)
}

// Credentials lays out credential status with secrets masked.
type Credentials []config.Entry

// TableData implements Tabular.
func (c Credentials) TableData() Data {
	rows := make([][]string, 0, len(c))
	for _, e := range c {
		set := "no"
		if e.Set {
			set = "yes"
		}
		rows = append(rows, []string{e.Service, e.Key, set, e.Value})
	}
	return Data{
		Headers: []string{"Service", "Key", "Set", "Value"},
		Rows:    rows,
	}
}

func keyValues(pairs ...any) Data {
	rows := make([][]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, []string{fmt.Sprint(pairs[i]), fmt.Sprint(pairs[i+1])})
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// Rows converts matches to interchange rows for structured output.
func (m Matches) Rows() []save.Row {
	rows := make([]save.Row, 0, len(m))
	for _, r := range m {
		rows = append(rows, save.Row{Name: r.Name, QID: r.QID, OSMID: int64(r.OSMID)})
	}
	return rows
}
