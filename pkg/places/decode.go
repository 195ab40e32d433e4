package places

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/paulmach/osm"

	"github.com/placelink/placelink/pkg/errors"
)

type osmExport struct {
	Elements []json.RawMessage `json:"elements"`
}

type osmElement struct {
	ID     json.RawMessage `json:"id"`
	Tags   json.RawMessage `json:"tags"`
	Center json.RawMessage `json:"center"`
}

type osmCenter struct {
	Lat json.RawMessage `json:"lat"`
	Lon json.RawMessage `json:"lon"`
}

type wikidataRow struct {
	Settlement      json.RawMessage `json:"settlement"`
	SettlementLabel json.RawMessage `json:"settlementLabel"`
	Coord           json.RawMessage `json:"coord"`
}

// DecodeOSMExport reads an export object whose "elements" key holds the
// relations. A document without "elements" yields no relations.
func DecodeOSMExport(r io.Reader) ([]OSMRelation, error) {
	var export osmExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}

	relations := make([]OSMRelation, 0, len(export.Elements))
	for _, raw := range export.Elements {
		relations = append(relations, decodeOSMRelation(raw))
	}
	return relations, nil
}

// DecodeWikidataExport reads a JSON array of settlement rows.
func DecodeWikidataExport(r io.Reader) ([]WikidataSettlement, error) {
	var rows []json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}

	settlements := make([]WikidataSettlement, 0, len(rows))
	for _, raw := range rows {
		settlements = append(settlements, decodeWikidataSettlement(raw))
	}
	return settlements, nil
}

// Fields of the wrong JSON type are treated as absent.
func decodeOSMRelation(raw json.RawMessage) OSMRelation {
	rel := OSMRelation{Raw: raw}

	var el osmElement
	if json.Unmarshal(raw, &el) != nil {
		return rel
	}

	var id int64
	if json.Unmarshal(el.ID, &id) == nil {
		rel.ID = osm.RelationID(id)
	}

	var tags map[string]json.RawMessage
	if json.Unmarshal(el.Tags, &tags) == nil {
		rel.Name = optionalString(tags["name"])
	}

	var center osmCenter
	if json.Unmarshal(el.Center, &center) == nil {
		rel.Lat = optionalFloat(center.Lat)
		rel.Lon = optionalFloat(center.Lon)
	}

	return rel
}

func decodeWikidataSettlement(raw json.RawMessage) WikidataSettlement {
	s := WikidataSettlement{Raw: raw}

	var row wikidataRow
	if json.Unmarshal(raw, &row) != nil {
		return s
	}

	s.Label = optionalString(row.SettlementLabel)
	s.Coord = optionalString(row.Coord)
	s.EntityURI = optionalString(row.Settlement)
	return s
}

func optionalString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func optionalFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return nil
	}
	return &f
}
