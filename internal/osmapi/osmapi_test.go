package osmapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/propagate"
	"github.com/placelink/placelink/pkg/save"
)

const relationXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="fake">
  <relation id="%d" visible="true" version="3" changeset="5" timestamp="2024-01-01T00:00:00Z" user="mapper" uid="1">
    <member type="way" ref="10" role="outer"/>
    <member type="node" ref="20" role="admin_centre"/>
    <tag k="name" v="Springfield"/>
    <tag k="type" v="boundary"/>
    %s
  </relation>
</osm>`

// fakeOSM is a minimal in-memory OSM API.
type fakeOSM struct {
	mu         sync.Mutex
	extraTags  map[int64]string
	gone       map[int64]bool
	created    []*osm.Changeset
	uploads    []osm.Change
	closed     []string
	authHeader string
}

func newFakeOSM() *fakeOSM {
	return &fakeOSM{extraTags: map[int64]string{}, gone: map[int64]bool{}}
}

func (f *fakeOSM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authHeader = r.Header.Get("Authorization")

	path := strings.TrimPrefix(r.URL.Path, "/api/0.6")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/relation/"):
		var id int64
		_, _ = fmt.Sscanf(path, "/relation/%d", &id)
		if f.gone[id] {
			w.WriteHeader(http.StatusGone)
			return
		}
		if id == 404 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprintf(w, relationXML, id, f.extraTags[id])

	case r.Method == http.MethodPut && path == "/changeset/create":
		body, _ := io.ReadAll(r.Body)
		var doc osm.OSM
		if err := xml.Unmarshal(body, &doc); err != nil || len(doc.Changesets) != 1 {
			http.Error(w, "bad changeset", http.StatusBadRequest)
			return
		}
		f.created = append(f.created, doc.Changesets[0])
		_, _ = w.Write([]byte("4242"))

	case r.Method == http.MethodPost && path == "/changeset/4242/upload":
		body, _ := io.ReadAll(r.Body)
		var change osm.Change
		if err := xml.Unmarshal(body, &change); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.uploads = append(f.uploads, change)
		_, _ = w.Write([]byte(`<diffResult version="0.6"/>`))

	case r.Method == http.MethodPut && path == "/changeset/4242/close":
		f.closed = append(f.closed, path)

	case r.Method == http.MethodGet && path == "/user/details":
		if f.authHeader != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`<osm><user id="1" display_name="mapper"/></osm>`))

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusBadRequest)
	}
}

func newTestTarget(t *testing.T, fake *fakeOSM, creds config.OSM) *Target {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	creds.APIURL = server.URL
	return NewTarget(New(creds, "placelink-test/1.0"), "")
}

func TestApplyPreview(t *testing.T) {
	fake := newFakeOSM()
	fake.extraTags[111] = `<tag k="wikidata" v="Q28513"/>`
	fake.extraTags[222] = `<tag k="wikidata" v="Q1"/>`
	fake.gone[555] = true

	target := newTestTarget(t, fake, config.OSM{})
	ctx := context.Background()

	tests := []struct {
		row     save.Row
		outcome propagate.Outcome
	}{
		{save.Row{QID: "Q28513", OSMID: 111}, propagate.OutcomeAlreadyLinked},
		{save.Row{QID: "Q28513", OSMID: 222}, propagate.OutcomeConflict},
		{save.Row{QID: "Q3", OSMID: 333}, propagate.OutcomeWouldApply},
		{save.Row{QID: "Q4", OSMID: 404}, propagate.OutcomeNotFound},
		{save.Row{QID: "Q5", OSMID: 555}, propagate.OutcomeNotFound},
		{save.Row{QID: "", OSMID: 333}, propagate.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.row.OSMID, tt.outcome), func(t *testing.T) {
			outcome, _ := target.Apply(ctx, tt.row, propagate.ModePreview)
			assert.Equal(t, tt.outcome, outcome)
		})
	}

	assert.Empty(t, fake.created, "preview never opens a changeset")
	assert.Empty(t, fake.authHeader, "anonymous reads")
}

func TestApplyCommit(t *testing.T) {
	fake := newFakeOSM()
	target := newTestTarget(t, fake, config.OSM{AccessToken: "good"})
	ctx := context.Background()

	for _, row := range []save.Row{{QID: "Q1", OSMID: 1}, {QID: "Q2", OSMID: 2}} {
		outcome, err := target.Apply(ctx, row, propagate.ModeCommit)
		require.NoError(t, err)
		assert.Equal(t, propagate.OutcomeApplied, outcome)
	}
	assert.Equal(t, osm.ChangesetID(4242), target.Changeset())

	require.Len(t, fake.created, 1, "one changeset per run")
	assert.Equal(t, DefaultComment, fake.created[0].Tags.Find("comment"))
	assert.Equal(t, "placelink", fake.created[0].Tags.Find("created_by"))

	require.Len(t, fake.uploads, 2)
	require.NotNil(t, fake.uploads[0].Modify)
	require.Len(t, fake.uploads[0].Modify.Relations, 1)
	rel := fake.uploads[0].Modify.Relations[0]
	assert.Equal(t, osm.RelationID(1), rel.ID)
	assert.Equal(t, 3, rel.Version)
	assert.Equal(t, osm.ChangesetID(4242), rel.ChangesetID)
	assert.Equal(t, "Q1", rel.Tags.Find("wikidata"))
	assert.Equal(t, "Springfield", rel.Tags.Find("name"), "existing tags are kept")
	assert.Len(t, rel.Members, 2, "members are kept")
	assert.Equal(t, "Bearer good", fake.authHeader)

	require.NoError(t, target.Close(ctx))
	assert.Len(t, fake.closed, 1)
	assert.Equal(t, osm.ChangesetID(0), target.Changeset())
	require.NoError(t, target.Close(ctx), "closing twice is a no-op")
	assert.Len(t, fake.closed, 1)
}

func TestCommitChangesetFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = fmt.Fprintf(w, relationXML, 7, "")
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	target := NewTarget(New(config.OSM{APIURL: server.URL, Username: "u", Password: "p"}, ""), "custom")
	outcome, err := target.Apply(context.Background(), save.Row{QID: "Q7", OSMID: 7}, propagate.ModeCommit)
	assert.Equal(t, propagate.OutcomeFailed, outcome)
	assert.ErrorIs(t, err, errors.ErrCredentialsInvalid)
	assert.Equal(t, osm.ChangesetID(0), target.Changeset())
}

func TestVerifyAuth(t *testing.T) {
	fake := newFakeOSM()
	server := httptest.NewServer(fake)
	defer server.Close()

	err := New(config.OSM{APIURL: server.URL}, "").VerifyAuth(context.Background())
	assert.True(t, errors.IsCredentialsError(err))

	err = New(config.OSM{APIURL: server.URL, AccessToken: "bad"}, "").VerifyAuth(context.Background())
	assert.ErrorIs(t, err, errors.ErrCredentialsInvalid)

	assert.NoError(t, New(config.OSM{APIURL: server.URL, AccessToken: "good"}, "").VerifyAuth(context.Background()))
}
