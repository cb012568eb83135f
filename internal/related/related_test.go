// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package related

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const scholarJSON = `{
  "organic": [
    {
      "title": "Scalable Graph Learning",
      "link": "https://example.com/sgl",
      "snippet": "We propose a\n scalable method.",
      "publicationInformation": {"summary": "A Lee - NeurIPS, 2022", "authors": [{"name": "A Lee"}, {"name": ""}]},
      "year": 2022,
      "citedBy": 15
    },
    {
      "title": "Message Passing Revisited",
      "link": "https://example.com/mpr",
      "publicationInfo": "B Kim - ICML, 2021",
      "year": "2021"
    }
  ]
}`

type serperStub struct {
	scholar  string
	search   string
	status   int
	requests []serperRequest
	paths    []string
}

func newSerperServer(t *testing.T, stub *serperStub) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req serperRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		stub.requests = append(stub.requests, req)
		stub.paths = append(stub.paths, r.URL.Path)

		if stub.status != 0 {
			w.WriteHeader(stub.status)
			w.Write([]byte(`{"message":"Unauthorized."}`))
			return
		}
		switch r.URL.Path {
		case "/scholar":
			w.Write([]byte(stub.scholar))
		case "/search":
			w.Write([]byte(stub.search))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	origScholar, origSearch := scholarURL, searchURL
	scholarURL, searchURL = ts.URL+"/scholar", ts.URL+"/search"
	t.Cleanup(func() { scholarURL, searchURL = origScholar, origSearch })
}

func testClient() *Client {
	return NewClient(http.DefaultClient, types.RelatedConfig{APIKey: "test-key"})
}

func TestSearch_Scholar(t *testing.T) {
	stub := &serperStub{scholar: scholarJSON}
	newSerperServer(t, stub)

	results, err := testClient().Search(context.Background(), "graph learning")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"/scholar"}, stub.paths)
	assert.Equal(t, serperRequest{Q: "graph learning", Num: 10}, stub.requests[0])

	r := results[0]
	assert.Equal(t, "Scalable Graph Learning", r.Title)
	assert.Equal(t, "We propose a scalable method.", r.Snippet)
	require.NotNil(t, r.Publication)
	assert.Equal(t, "A Lee - NeurIPS, 2022", r.Publication.Summary)
	assert.Equal(t, []string{"A Lee"}, r.Publication.Authors)
	assert.Equal(t, 2022, r.Year)
	assert.Equal(t, 15, r.CitedBy)

	require.NotNil(t, results[1].Publication)
	assert.Equal(t, "B Kim - ICML, 2021", results[1].Publication.Summary)
	assert.Equal(t, 2021, results[1].Year)
}

func TestSearch_Fallback(t *testing.T) {
	stub := &serperStub{scholar: `{"organic": []}`, search: scholarJSON}
	newSerperServer(t, stub)

	results, err := testClient().Search(context.Background(), "graph learning")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	assert.Equal(t, []string{"/scholar", "/search"}, stub.paths)
	assert.Equal(t, "graph learning site:scholar.google.com", stub.requests[1].Q)
}

func TestSearch_NoResults(t *testing.T) {
	stub := &serperStub{scholar: `{}`, search: `{"organic": []}`}
	newSerperServer(t, stub)

	_, err := testClient().Search(context.Background(), "nothing")
	assert.ErrorIs(t, err, types.ErrNoResults)
	assert.Len(t, stub.paths, 2)
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name     string
		stub     *serperStub
		wantKind types.ErrorKind
	}{
		{"http error with body", &serperStub{status: http.StatusForbidden}, types.KindUpstream},
		{"malformed json", &serperStub{scholar: `{"organic": [`}, types.KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newSerperServer(t, tt.stub)
			_, err := testClient().Search(context.Background(), "q")
			require.Error(t, err)
			assert.NotErrorIs(t, err, types.ErrNoResults)
			assert.Equal(t, tt.wantKind, types.KindOf(err))
			assert.Len(t, tt.stub.paths, 1, "failed request must not fall back")
		})
	}
}

func TestBuildQuery(t *testing.T) {
	long := strings.Repeat("x", 250)
	tests := []struct {
		name  string
		paper types.Paper
		want  string
	}{
		{"short abstract ignored", types.Paper{Title: "GNNs", Abstract: "short"}, "GNNs"},
		{"long abstract truncated", types.Paper{Title: "GNNs", Abstract: long}, "GNNs " + strings.Repeat("x", 200)},
		{"abstract just over threshold", types.Paper{Title: "T", Abstract: strings.Repeat("y", 101)}, "T " + strings.Repeat("y", 101)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(&tt.paper))
		})
	}
}

func TestKeywordQuery(t *testing.T) {
	p := &types.Paper{
		Title:   "Graph Neural Networks at Scale",
		Authors: []string{"Alice Smith", "Bob Jones", "Carol White"},
	}
	got := KeywordQuery(p, []string{"graph neural networks", "scalability", "", "sampling", "extra"})
	assert.Equal(t, `"graph neural networks" scalability sampling -Smith -Jones -intitle:"Graph Neural Networks"`, got)

	assert.Equal(t, BuildQuery(p), KeywordQuery(p, nil))
}

func TestFilterOriginal(t *testing.T) {
	p := &types.Paper{Title: "Graph Neural Networks at Scale"}
	results := []types.RelatedResult{
		{Title: "Graph neural networks at scale"},
		{Title: "Graph Neural Networks at…"},
		{Title: "Scalable Graph Learning"},
		{Title: ""},
	}
	got := FilterOriginal(results, p)
	require.Len(t, got, 2)
	assert.Equal(t, "Scalable Graph Learning", got[0].Title)
}

func TestFormatResults(t *testing.T) {
	var buf bytes.Buffer
	FormatResults(&buf, []types.RelatedResult{{
		Title:       "Scalable Graph Learning",
		Link:        "https://example.com/sgl",
		Snippet:     "We propose a scalable method.",
		Publication: &types.Publication{Summary: "A Lee - NeurIPS, 2022"},
		Year:        2022,
	}}, 80)
	out := buf.String()
	assert.Contains(t, out, "[1] Scalable Graph Learning")
	assert.Contains(t, out, "Publication: A Lee - NeurIPS, 2022")
	assert.Contains(t, out, "Year: 2022")
	assert.Contains(t, out, "      We propose a scalable method.")
}
