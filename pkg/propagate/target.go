// Package propagate drives write-back of matched pairs to a remote dataset.
//
// A Target knows how to check and apply one link on one service (a P402 claim
// on Wikidata, a wikidata tag on an OSM relation). The Runner feeds it rows in
// order, paces requests, isolates per-row failures and produces a Summary.
// Preview mode is the default; nothing is written unless ModeCommit is set.
package propagate

import (
	"context"

	"github.com/placelink/placelink/pkg/save"
)

// Mode selects whether a Target only checks a row or also writes it.
type Mode string

// Modes.
const (
	ModePreview Mode = "preview"
	ModeCommit  Mode = "commit"
)

// Outcome is the result of applying one row.
type Outcome string

// Outcomes.
const (
	OutcomeWouldApply    Outcome = "would_apply"
	OutcomeApplied       Outcome = "applied"
	OutcomeAlreadyLinked Outcome = "already_linked"
	OutcomeConflict      Outcome = "conflict"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeFailed        Outcome = "failed"
)

// Succeeded reports whether the outcome counts as an update in mode.
func (o Outcome) Succeeded(mode Mode) bool {
	if mode == ModeCommit {
		return o == OutcomeApplied
	}
	return o == OutcomeWouldApply
}

// Target checks and applies links on one remote service.
// Apply must never overwrite a different existing value; it reports
// OutcomeConflict instead.
type Target interface {
	Name() string
	Apply(ctx context.Context, row save.Row, mode Mode) (Outcome, error)
}

// Closer is implemented by targets holding per-run state on the remote side,
// such as an open OSM changeset.
type Closer interface {
	Close(ctx context.Context) error
}
