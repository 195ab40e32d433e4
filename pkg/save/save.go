// Package save writes match results to the JSON and CSV interchange files and
// reads the CSV back for write-back.
package save

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/match"
	"github.com/placelink/placelink/pkg/places"
)

// CSV column names.
const (
	ColumnName  = "name"
	ColumnQID   = "wd_qid"
	ColumnOSMID = "osm_id"
)

// jsonRecord fixes the key order of a match in the JSON output.
type jsonRecord struct {
	Wikidata    places.WikidataSettlement `json:"wikidata"`
	OSM         places.OSMRelation        `json:"osm"`
	MatchType   match.Type                `json:"match_type"`
	Name        string                    `json:"name"`
	WikidataQID string                    `json:"wikidata_qid"`
	OSMID       int64                     `json:"osm_id"`
}

// WriteJSON writes records as an indented JSON array embedding both source
// objects. Non-ASCII text is written as is.
func WriteJSON(w io.Writer, records []match.Record) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{
			Wikidata:    r.Wikidata,
			OSM:         r.OSM,
			MatchType:   r.MatchType,
			Name:        r.Name,
			WikidataQID: r.QID,
			OSMID:       int64(r.OSMID),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes the name,wd_qid,osm_id table.
func WriteCSV(w io.Writer, records []match.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnName, ColumnQID, ColumnOSMID}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Name, r.QID, strconv.FormatInt(int64(r.OSMID), 10)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFile writes records to path with WriteJSON.
func JSONFile(path string, records []match.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, records) })
}

// CSVFile writes records to path with WriteCSV.
func CSVFile(path string, records []match.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, records) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
