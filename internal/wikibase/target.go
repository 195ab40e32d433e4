package wikibase

import (
	"context"
	"strconv"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
	"github.com/placelink/placelink/pkg/propagate"
	"github.com/placelink/placelink/pkg/save"
)

// Target adds P402 (OpenStreetMap relation ID) claims to Wikidata items.
type Target struct {
	client *Client
}

// NewTarget wraps client as a write-back target.
func NewTarget(client *Client) *Target {
	return &Target{client: client}
}

// Name implements propagate.Target.
func (t *Target) Name() string {
	return ServiceName
}

// Apply implements propagate.Target. An existing P402 claim is never replaced.
func (t *Target) Apply(ctx context.Context, row save.Row, mode propagate.Mode) (propagate.Outcome, error) {
	if row.QID == "" {
		return propagate.OutcomeFailed, errors.NewValidationError("wd_qid", row.QID, "item id is empty")
	}
	log := logging.FromContext(ctx)
	wanted := strconv.FormatInt(row.OSMID, 10)

	claims, err := t.client.Claims(ctx, row.QID, constants.PropertyOSMRelationID)
	if err != nil {
		if errors.IsNotFound(err) {
			return propagate.OutcomeNotFound, err
		}
		return propagate.OutcomeFailed, err
	}

	for _, claim := range claims {
		existing, _ := claim.StringValue()
		if existing == wanted {
			return propagate.OutcomeAlreadyLinked, nil
		}
		return propagate.OutcomeConflict, errors.NewConflictError("item", row.QID, constants.PropertyOSMRelationID, existing, wanted)
	}

	if mode != propagate.ModeCommit {
		return propagate.OutcomeWouldApply, nil
	}

	claimID, err := t.client.CreateStringClaim(ctx, row.QID, constants.PropertyOSMRelationID, wanted, "Adding OpenStreetMap relation ID")
	if err != nil {
		return propagate.OutcomeFailed, err
	}
	log.Info().Str("claim", claimID).Msg("Added P402 claim")

	if err := t.client.SetItemReference(ctx, claimID, constants.PropertyImportedFrom, constants.ItemOpenStreetMap); err != nil {
		log.Warn().Err(err).Str("claim", claimID).Msg("Claim added but reference failed")
	}

	return propagate.OutcomeApplied, nil
}
