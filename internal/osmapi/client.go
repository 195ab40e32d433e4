// Package osmapi is a client for the parts of the OpenStreetMap API 0.6 that
// placelink writes through: reading relations, changesets and osmChange upload.
package osmapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/paulmach/osm"

	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/internal/transport"
	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// ServiceName identifies OpenStreetMap in logs, errors and the journal.
const ServiceName = "osm"

const xmlContentType = "text/xml; charset=utf-8"

// Client talks to one OSM API endpoint.
type Client struct {
	base string
	http *transport.Client
}

// New creates a client. An access token takes precedence over username and
// password; with neither, only public reads work.
func New(creds config.OSM, userAgent string, opts ...transport.Option) *Client {
	base := strings.TrimRight(creds.APIURL, "/")
	if base == "" {
		base = constants.DefaultOSMAPIURL
	}
	auth := transport.Pick(creds.AccessToken, creds.Username, creds.Password)
	opts = append([]transport.Option{transport.WithUserAgent(userAgent)}, opts...)
	return &Client{
		base: base,
		http: transport.New(ServiceName, auth, opts...),
	}
}

func (c *Client) url(format string, args ...any) string {
	return c.base + "/api/0.6" + fmt.Sprintf(format, args...)
}

// Relation fetches the current version of a relation.
// Missing and deleted relations are reported as a NotFoundError.
func (c *Client) Relation(ctx context.Context, id osm.RelationID) (*osm.Relation, error) {
	resp, err := c.http.Get(ctx, c.url("/relation/%d", id), "application/xml")
	if err != nil {
		return nil, err
	}
	body, err := transport.ReadBody(resp, ServiceName)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("relation", strconv.FormatInt(int64(id), 10))
		}
		return nil, err
	}

	var doc osm.OSM
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapParse("xml", "relation response", err)
	}
	for _, rel := range doc.Relations {
		if rel.ID == id {
			return rel, nil
		}
	}
	return nil, errors.NewNotFoundError("relation", strconv.FormatInt(int64(id), 10))
}

// CreateChangeset opens a changeset carrying tags and returns its id.
func (c *Client) CreateChangeset(ctx context.Context, tags osm.Tags) (osm.ChangesetID, error) {
	doc := osm.OSM{
		Generator:  "placelink",
		Changesets: osm.Changesets{&osm.Changeset{Tags: tags}},
	}
	payload, err := xml.Marshal(doc)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Send(ctx, http.MethodPut, c.url("/changeset/create"), xmlContentType, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	body, err := transport.ReadBody(resp, ServiceName)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, errors.WrapParse("text", "changeset id", err)
	}
	return osm.ChangesetID(id), nil
}

// UploadModify uploads rel as a <modify> osmChange into changeset id.
func (c *Client) UploadModify(ctx context.Context, id osm.ChangesetID, rel *osm.Relation) error {
	rel.ChangesetID = id
	change := osm.Change{
		Generator: "placelink",
		Modify:    &osm.OSM{Relations: osm.Relations{rel}},
	}
	payload, err := xml.Marshal(change)
	if err != nil {
		return err
	}

	resp, err := c.http.Send(ctx, http.MethodPost, c.url("/changeset/%d/upload", id), xmlContentType, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	_, err = transport.ReadBody(resp, ServiceName)
	return err
}

// CloseChangeset closes changeset id.
func (c *Client) CloseChangeset(ctx context.Context, id osm.ChangesetID) error {
	resp, err := c.http.Send(ctx, http.MethodPut, c.url("/changeset/%d/close", id), "", nil)
	if err != nil {
		return err
	}
	_, err = transport.ReadBody(resp, ServiceName)
	return err
}

// VerifyAuth checks the credentials against the user details endpoint.
func (c *Client) VerifyAuth(ctx context.Context) error {
	if _, ok := c.http.Auth().(*transport.NoAuth); ok {
		return errors.NewAuthenticationError(ServiceName, "none", "no credentials configured", errors.ErrCredentialsRequired)
	}
	resp, err := c.http.Get(ctx, c.url("/user/details"), "application/xml")
	if err != nil {
		return err
	}
	if _, err := transport.ReadBody(resp, ServiceName); err != nil {
		return errors.NewAuthenticationError(ServiceName, c.http.Auth().Method(), "user details request rejected", err)
	}
	return nil
}
