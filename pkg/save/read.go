package save

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/placelink/placelink/pkg/errors"
)

// Row is one line of the interchange CSV.
type Row struct {
	Name  string `json:"name" yaml:"name"`
	QID   string `json:"wd_qid" yaml:"wd_qid" validate:"required,qid"`
	OSMID int64  `json:"osm_id" yaml:"osm_id" validate:"gt=0"`
}

// RowError describes a CSV line that was skipped.
type RowError struct {
	Line int
	Row  Row
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var qidPattern = regexp.MustCompile(`^Q[1-9][0-9]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("qid", func(fl validator.FieldLevel) bool {
		return qidPattern.MatchString(fl.Field().String())
	})
	return v
}

// ReadCSV parses the interchange CSV. Columns are located by header name, so
// extra or reordered columns are fine. Rows that fail validation are returned
// separately and do not stop the read.
func ReadCSV(r io.Reader) ([]Row, []RowError, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.NewParseError("csv", "", "missing header", nil)
	}
	if err != nil {
		return nil, nil, errors.WrapParse("csv", "", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range []string{ColumnName, ColumnQID, ColumnOSMID} {
		if _, ok := col[k]; !ok {
			return nil, nil, errors.NewParseError("csv", "", "missing required column: "+k, errors.ErrInvalidInput)
		}
	}

	var rows []Row
	var rowErrs []RowError
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, rowErrs, errors.WrapParse("csv", "", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row := Row{Name: get(ColumnName), QID: get(ColumnQID)}
		if rowErr := parseRow(&row, get(ColumnOSMID)); rowErr != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Row: row, Err: rowErr})
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

func parseRow(row *Row, osmID string) error {
	id, err := strconv.ParseInt(osmID, 10, 64)
	if err != nil {
		return errors.NewValidationError(ColumnOSMID, osmID, "not an integer")
	}
	row.OSMID = id

	if err := validate.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Field(), fe.Value(), "failed "+fe.Tag()+" check")
		}
		return errors.NewValidationError("", row, err.Error())
	}
	return nil
}

// ReadCSVFile reads the interchange CSV at path.
func ReadCSVFile(path string) ([]Row, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, rowErrs, err := ReadCSV(f)
	var parseErr *errors.ParseError
	if errors.As(err, &parseErr) {
		parseErr.File = path
	}
	return rows, rowErrs, err
}
