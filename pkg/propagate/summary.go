package propagate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/save"
)

// ItemResult is the outcome for one row.
type ItemResult struct {
	Index       int     `json:"index" yaml:"index"`
	Name        string  `json:"name" yaml:"name"`
	QID         string  `json:"wd_qid" yaml:"wd_qid"`
	OSMID       int64   `json:"osm_id" yaml:"osm_id"`
	Outcome     Outcome `json:"outcome" yaml:"outcome"`
	Error       string  `json:"error,omitempty" yaml:"error,omitempty"`
	FromJournal bool    `json:"from_journal,omitempty" yaml:"from_journal,omitempty"`
}

// Summary is the result of one write-back run.
type Summary struct {
	Target     string       `json:"target" yaml:"target"`
	Mode       Mode         `json:"mode" yaml:"mode"`
	Total      int          `json:"total" yaml:"total"`
	Processed  int          `json:"processed" yaml:"processed"`
	Succeeded  int          `json:"succeeded" yaml:"succeeded"`
	Skipped    int          `json:"skipped" yaml:"skipped"`
	Conflicts  int          `json:"conflicts" yaml:"conflicts"`
	NotFound   int          `json:"not_found" yaml:"not_found"`
	Failed     int          `json:"failed" yaml:"failed"`
	StartedAt  utc.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time     `json:"finished_at" yaml:"finished_at"`
	Items      []ItemResult `json:"items" yaml:"items"`
}

func newSummary(target string, mode Mode, total int) *Summary {
	return &Summary{
		Target:    target,
		Mode:      mode,
		Total:     total,
		StartedAt: utc.Now(),
		Items:     make([]ItemResult, 0, total),
	}
}

func newItem(index int, row save.Row) ItemResult {
	return ItemResult{Index: index, Name: row.Name, QID: row.QID, OSMID: row.OSMID}
}

func (s *Summary) add(item ItemResult) {
	s.Items = append(s.Items, item)
	s.Processed++

	switch {
	case item.Outcome.Succeeded(s.Mode):
		s.Succeeded++
	case item.Outcome == OutcomeAlreadyLinked:
		s.Skipped++
	case item.Outcome == OutcomeConflict:
		s.Conflicts++
	case item.Outcome == OutcomeNotFound:
		s.NotFound++
	case item.Outcome == OutcomeFailed:
		s.Failed++
	}
}

func (s *Summary) finish() {
	s.FinishedAt = utc.Now()
}

// Line returns the one-line run summary.
func (s *Summary) Line() string {
	verb := "would be"
	if s.Mode == ModeCommit {
		verb = "were"
	}
	return fmt.Sprintf("Summary: %d/%d %s items %s updated", s.Succeeded, s.Total, s.Target, verb)
}

// WriteReport writes the summary to path as YAML when the extension is .yaml
// or .yml and as JSON otherwise.
func (s *Summary) WriteReport(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return errors.WrapParse(strings.TrimPrefix(filepath.Ext(path), "."), path, err)
	}

	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
