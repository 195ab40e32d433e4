package wikibase

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// Claim is the part of a Wikibase statement placelink reads.
type Claim struct {
	ID       string `json:"id"`
	Mainsnak struct {
		SnakType  string `json:"snaktype"`
		Property  string `json:"property"`
		DataValue *struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// StringValue returns the claim value for string-typed properties.
func (c Claim) StringValue() (string, bool) {
	if c.Mainsnak.DataValue == nil || c.Mainsnak.DataValue.Type != "string" {
		return "", false
	}
	var s string
	if json.Unmarshal(c.Mainsnak.DataValue.Value, &s) != nil {
		return "", false
	}
	return s, true
}

type claimsResponse struct {
	Claims map[string][]Claim `json:"claims"`
}

type createClaimResponse struct {
	Claim Claim `json:"claim"`
}

// Claims returns the statements of entity for property.
// A missing entity is reported as a NotFoundError.
func (c *Client) Claims(ctx context.Context, entity, property string) ([]Claim, error) {
	var resp claimsResponse
	err := c.call(ctx, url.Values{
		"action":   {"wbgetclaims"},
		"entity":   {entity},
		"property": {property},
	}, &resp)
	if err != nil {
		if code := apiCode(err); code == "no-such-entity" || code == "invalid-entity-id" {
			return nil, errors.NewNotFoundError("item", entity)
		}
		return nil, err
	}
	return resp.Claims[property], nil
}

// CreateStringClaim adds a string-valued statement and returns its id.
func (c *Client) CreateStringClaim(ctx context.Context, entity, property, value, summary string) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	var resp createClaimResponse
	err = c.edit(ctx, url.Values{
		"action":   {"wbcreateclaim"},
		"entity":   {entity},
		"property": {property},
		"snaktype": {"value"},
		"value":    {string(encoded)},
		"summary":  {summary},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Claim.ID, nil
}

// SetItemReference adds a reference "property = item" to a statement.
func (c *Client) SetItemReference(ctx context.Context, statementID, property, item string) error {
	numericID, err := strconv.ParseInt(strings.TrimPrefix(item, "Q"), 10, 64)
	if err != nil {
		return errors.NewValidationError("item", item, "not an item id")
	}

	snaks := map[string][]map[string]any{
		property: {{
			"snaktype": "value",
			"property": property,
			"datavalue": map[string]any{
				"type": "wikibase-entityid",
				"value": map[string]any{
					"entity-type": "item",
					"numeric-id":  numericID,
					"id":          item,
				},
			},
		}},
	}
	encoded, err := json.Marshal(snaks)
	if err != nil {
		return err
	}

	return c.edit(ctx, url.Values{
		"action":    {"wbsetreference"},
		"statement": {statementID},
		"snaks":     {string(encoded)},
		"summary":   {"Adding reference"},
	}, nil)
}

// edit sends a write request with an edit token, refreshing the token once
// when the API rejects it.
func (c *Client) edit(ctx context.Context, params url.Values, out any) error {
	params.Set("maxlag", strconv.Itoa(constants.MaxLag))
	if c.creds.Username != "" || c.creds.AccessToken != "" {
		params.Set("bot", "1")
	}

	for attempt := 0; ; attempt++ {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return err
		}
		params.Set("token", token)

		err = c.call(ctx, params, out)
		if apiCode(err) == "badtoken" && attempt == 0 {
			c.resetToken()
			continue
		}
		return err
	}
}
