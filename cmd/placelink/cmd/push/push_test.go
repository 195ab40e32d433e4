package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placelink/placelink/internal/cmd/application"
	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/pkg/errors"
)

const matchesCSV = `name,wd_qid,osm_id
Dresden,Q1731,62422
Leipzig,Q2079,62649
Broken,X1,1
`

// fakeWikidata answers the handful of Action API calls a push makes.
type fakeWikidata struct {
	mu      sync.Mutex
	claims  map[string]string
	created []string
}

func (f *fakeWikidata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = r.ParseForm()

	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	authed := r.Header.Get("Authorization") == "Bearer wd-token"
	switch r.PostForm.Get("action") {
	case "query":
		token := `+\`
		if authed {
			token = `csrf+\`
		}
		reply(map[string]any{"query": map[string]any{"tokens": map[string]string{"csrftoken": token}}})
	case "wbgetclaims":
		var claims []map[string]any
		if v, ok := f.claims[r.PostForm.Get("entity")]; ok {
			claims = append(claims, map[string]any{
				"id":       "x",
				"mainsnak": map[string]any{"snaktype": "value", "property": "P402", "datavalue": map[string]any{"type": "string", "value": v}},
			})
		}
		reply(map[string]any{"claims": map[string]any{"P402": claims}})
	case "wbcreateclaim":
		entity := r.PostForm.Get("entity")
		var value string
		_ = json.Unmarshal([]byte(r.PostForm.Get("value")), &value)
		f.created = append(f.created, entity+"="+value)
		f.claims[entity] = value
		reply(map[string]any{"success": 1, "claim": map[string]any{"id": entity + "$new"}})
	case "wbsetreference":
		reply(map[string]any{"success": 1})
	default:
		reply(map[string]any{"error": map[string]string{"code": "unknown_action", "info": "?"}})
	}
}

func (f *fakeWikidata) createdClaims() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

type harness struct {
	wd      *fakeWikidata
	app     *application.Mock
	csvPath string
	dir     string
	format  string
	creds   config.Credentials
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		wd:     &fakeWikidata{claims: map[string]string{"Q1731": "62422"}},
		dir:    t.TempDir(),
		format: "table",
	}
	srv := httptest.NewServer(h.wd)
	t.Cleanup(srv.Close)

	h.csvPath = filepath.Join(h.dir, "matches.csv")
	require.NoError(t, os.WriteFile(h.csvPath, []byte(matchesCSV), 0o644))

	h.creds = config.Credentials{
		Wikidata:  config.Wikidata{APIURL: srv.URL},
		UserAgent: "placelink-test",
	}
	h.app = &application.Mock{
		CredentialsFunc:  func() config.Credentials { return h.creds },
		OutputFormatFunc: func() string { return h.format },
	}
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand(h.app)
	cmd.GroupID = ""

	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--csv", h.csvPath, "--delay", "0"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestPushWikidataPreview(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run(t, "", "wikidata")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dresden (Q1731) -> relation 62422: already_linked")
	assert.Contains(t, stdout, "Leipzig (Q2079) -> relation 62649: would_apply")
	assert.NotContains(t, stdout, "Broken")
	assert.Contains(t, stdout, "Summary: 1/2 wikidata items would be updated")
	assert.Empty(t, h.wd.createdClaims())
}

func TestPushWikidataCommitRequiresCredentials(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "", "wikidata", "--commit", "-y")
	assert.ErrorIs(t, err, errors.ErrCredentialsRequired)
	assert.Empty(t, h.wd.createdClaims())
}

func TestPushWikidataCommitDeclined(t *testing.T) {
	h := newHarness(t)
	h.creds.Wikidata.AccessToken = "wd-token"

	_, stderr, err := h.run(t, "n\n", "wikidata", "--commit")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Write 2 rows to Wikidata? (y/N)")
	assert.Contains(t, stderr, "Push cancelled")
	assert.Empty(t, h.wd.createdClaims())
}

func TestPushWikidataCommitRejectedToken(t *testing.T) {
	h := newHarness(t)
	h.creds.Wikidata.AccessToken = "wrong"

	_, _, err := h.run(t, "", "wikidata", "--commit", "-y")
	assert.True(t, errors.IsCredentialsError(err), "got %v", err)
	assert.Empty(t, h.wd.createdClaims())
}

func TestPushWikidataCommitWithJournalAndReport(t *testing.T) {
	h := newHarness(t)
	h.creds.Wikidata.AccessToken = "wd-token"
	journalPath := filepath.Join(h.dir, "journal.db")
	reportPath := filepath.Join(h.dir, "report.json")

	stdout, _, err := h.run(t, "y\n", "wikidata", "--commit", "--journal", journalPath, "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Leipzig (Q2079) -> relation 62649: applied")
	assert.Contains(t, stdout, "Summary: 1/2 wikidata items were updated")
	assert.Equal(t, []string{"Q2079=62649"}, h.wd.createdClaims())

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "commit", report["mode"])
	assert.EqualValues(t, 2, report["total"])

	// a resumed run takes both rows from the journal
	stdout, _, err = h.run(t, "", "wikidata", "--commit", "-y", "--journal", journalPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "applied (journal)")
	assert.Contains(t, stdout, "already_linked (journal)")
	assert.Len(t, h.wd.createdClaims(), 1)
}

func TestPushStructuredOutput(t *testing.T) {
	h := newHarness(t)
	h.format = "json"

	stdout, _, err := h.run(t, "", "wikidata")
	require.NoError(t, err)

	var summary struct {
		Target    string `json:"target"`
		Succeeded int    `json:"succeeded"`
		Skipped   int    `json:"skipped"`
		Items     []struct {
			QID     string `json:"wd_qid"`
			Outcome string `json:"outcome"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "wikidata", summary.Target)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, "would_apply", summary.Items[1].Outcome)

	h.format = "csv"
	stdout, _, err = h.run(t, "", "wikidata")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "#,Name,QID,OSM ID,Outcome,Error\n"), stdout)
}

const osmRelation = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="fake">
  <relation id="%d" visible="true" version="2" changeset="1" timestamp="2024-01-01T00:00:00Z" user="m" uid="1">
    <member type="way" ref="10" role="outer"/>
    <tag k="name" v="Town"/>%s
  </relation>
</osm>`

func TestPushOSMPreview(t *testing.T) {
	h := newHarness(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/api/0.6/relation/%d", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		extra := ""
		if id == 62422 {
			extra = `<tag k="wikidata" v="Q1"/>`
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprintf(w, osmRelation, id, extra)
	}))
	t.Cleanup(srv.Close)
	h.creds.OSM.APIURL = srv.URL

	stdout, _, err := h.run(t, "", "osm")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Dresden (Q1731) -> relation 62422: conflict")
	assert.Contains(t, stdout, "Leipzig (Q2079) -> relation 62649: would_apply")
	assert.Contains(t, stdout, "Summary: 1/2 osm items would be updated")

	_, _, err = h.run(t, "", "osm", "--commit", "-y")
	assert.ErrorIs(t, err, errors.ErrCredentialsRequired)
}
