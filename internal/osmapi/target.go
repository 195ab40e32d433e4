package osmapi

import (
	"context"
	"strconv"
	"sync"

	"github.com/paulmach/osm"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
	"github.com/placelink/placelink/pkg/propagate"
	"github.com/placelink/placelink/pkg/save"
)

// DefaultComment is the changeset comment used when none is given.
const DefaultComment = "Adding wikidata tags to relations based on name/coordinate matching"

// Target adds wikidata=<QID> tags to OSM relations. All edits of one run go
// into a single changeset, opened on the first commit and closed by Close.
type Target struct {
	client  *Client
	comment string

	mu        sync.Mutex
	changeset osm.ChangesetID
}

// NewTarget wraps client as a write-back target.
func NewTarget(client *Client, comment string) *Target {
	if comment == "" {
		comment = DefaultComment
	}
	return &Target{client: client, comment: comment}
}

// Name implements propagate.Target.
func (t *Target) Name() string {
	return ServiceName
}

// Apply implements propagate.Target. An existing wikidata tag is never replaced.
func (t *Target) Apply(ctx context.Context, row save.Row, mode propagate.Mode) (propagate.Outcome, error) {
	if row.QID == "" {
		return propagate.OutcomeFailed, errors.NewValidationError("wd_qid", row.QID, "item id is empty")
	}

	rel, err := t.client.Relation(ctx, osm.RelationID(row.OSMID))
	if err != nil {
		if errors.IsNotFound(err) {
			return propagate.OutcomeNotFound, err
		}
		return propagate.OutcomeFailed, err
	}

	for _, tag := range rel.Tags {
		if tag.Key != constants.TagWikidata {
			continue
		}
		if tag.Value == row.QID {
			return propagate.OutcomeAlreadyLinked, nil
		}
		return propagate.OutcomeConflict, errors.NewConflictError("relation",
			strconv.FormatInt(row.OSMID, 10), constants.TagWikidata, tag.Value, row.QID)
	}

	if mode != propagate.ModeCommit {
		return propagate.OutcomeWouldApply, nil
	}

	changeset, err := t.openChangeset(ctx)
	if err != nil {
		return propagate.OutcomeFailed, err
	}

	rel.Tags = append(rel.Tags, osm.Tag{Key: constants.TagWikidata, Value: row.QID})
	if err := t.client.UploadModify(ctx, changeset, rel); err != nil {
		return propagate.OutcomeFailed, err
	}

	logging.FromContext(ctx).Info().
		Int64("changeset", int64(changeset)).
		Int("version", rel.Version).
		Msg("Tagged relation")
	return propagate.OutcomeApplied, nil
}

func (t *Target) openChangeset(ctx context.Context) (osm.ChangesetID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.changeset != 0 {
		return t.changeset, nil
	}

	id, err := t.client.CreateChangeset(ctx, osm.Tags{
		{Key: "created_by", Value: "placelink"},
		{Key: "comment", Value: t.comment},
		{Key: "source", Value: "wikidata"},
	})
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info().Int64("changeset", int64(id)).Msg("Opened changeset")
	t.changeset = id
	return id, nil
}

// Changeset returns the open changeset id, or 0.
func (t *Target) Changeset() osm.ChangesetID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changeset
}

// Close implements propagate.Closer by closing the open changeset, if any.
func (t *Target) Close(ctx context.Context) error {
	t.mu.Lock()
	id := t.changeset
	t.changeset = 0
	t.mu.Unlock()

	if id == 0 {
		return nil
	}
	if err := t.client.CloseChangeset(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().Int64("changeset", int64(id)).Msg("Closed changeset")
	return nil
}
