package places

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/placelink/placelink/pkg/errors"
)

// LoadOSMExport reads an OSM relation export from path.
// Paths ending in .gz are decompressed on the fly.
func LoadOSMExport(path string) ([]OSMRelation, error) {
	var relations []OSMRelation
	err := withReader(path, func(r io.Reader) error {
		var err error
		relations, err = DecodeOSMExport(r)
		return err
	})
	return relations, err
}

// LoadWikidataExport reads a Wikidata settlement export from path.
// Paths ending in .gz are decompressed on the fly.
func LoadWikidataExport(path string) ([]WikidataSettlement, error) {
	var settlements []WikidataSettlement
	err := withReader(path, func(r io.Reader) error {
		var err error
		settlements, err = DecodeWikidataExport(r)
		return err
	})
	return settlements, err
}

func withReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return errors.WrapIO("decompress", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	if err := fn(r); err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return err
	}
	return nil
}
