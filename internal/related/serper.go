// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package related finds related work for a paper through the Serper
// Google Scholar API.
package related

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Serper endpoints. Declared as vars so tests can substitute an httptest server.
var (
	scholarURL = "https://google.serper.dev/scholar"
	searchURL  = "https://google.serper.dev/search"
)

const (
	defaultNumResults = 10
	fallbackSuffix    = " site:scholar.google.com"
)

// Client queries Serper. The scholar endpoint is tried first; when it
// returns nothing, the general search endpoint is queried once with the
// results restricted to scholar.google.com.
type Client struct {
	Client     *http.Client
	APIKey     string
	NumResults int
	UserAgent  string
}

// NewClient builds a Client from cfg.
func NewClient(client *http.Client, cfg types.RelatedConfig) *Client {
	n := cfg.NumResults
	if n <= 0 {
		n = defaultNumResults
	}
	return &Client{Client: client, APIKey: cfg.APIKey, NumResults: n, UserAgent: cfg.UserAgent}
}

// Search returns related-work results for query. A search that succeeds on
// both endpoints without results returns types.ErrNoResults.
func (c *Client) Search(ctx context.Context, query string) ([]types.RelatedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewError(types.KindNotFound, "related search", errors.New("empty query"))
	}

	results, err := c.post(ctx, scholarURL, query)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		return results, nil
	}

	results, err = c.post(ctx, searchURL, query+fallbackSuffix)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, types.ErrNoResults
	}
	return results, nil
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
}

type serperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`

	// The scholar endpoint has reported publication details both as a
	// structured object and as a flat string.
	PublicationInformation *serperPubInfo `json:"publicationInformation"`
	PublicationInfo        string         `json:"publicationInfo"`

	Year    flexInt `json:"year"`
	CitedBy flexInt `json:"citedBy"`
}

type serperPubInfo struct {
	Summary string         `json:"summary"`
	Authors []serperAuthor `json:"authors"`
}

type serperAuthor struct {
	Name string `json:"name"`
}

// flexInt decodes a JSON number or a numeric string; anything else is 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, query string) ([]types.RelatedResult, error) {
	op := "serper " + endpoint

	body, err := json.Marshal(serperRequest{Q: query, Num: c.NumResults})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.KindTransport, op, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.Do(ctx, c.Client, req)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Body != "" {
			return nil, types.NewError(types.KindUpstream, op, err)
		}
		return nil, types.NewError(types.KindTransport, op, err)
	}
	defer resp.Body.Close()

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, types.NewError(types.KindMalformed, op, fmt.Errorf("decoding response: %w", err))
	}

	results := make([]types.RelatedResult, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		results = append(results, o.toResult())
	}
	return results, nil
}

func (o serperResult) toResult() types.RelatedResult {
	r := types.RelatedResult{
		Title:   strings.TrimSpace(o.Title),
		Link:    o.Link,
		Snippet: strings.Join(strings.Fields(o.Snippet), " "),
		Year:    int(o.Year),
		CitedBy: int(o.CitedBy),
	}
	switch {
	case o.PublicationInformation != nil:
		pub := &types.Publication{Summary: o.PublicationInformation.Summary}
		for _, a := range o.PublicationInformation.Authors {
			if a.Name != "" {
				pub.Authors = append(pub.Authors, a.Name)
			}
		}
		r.Publication = pub
	case o.PublicationInfo != "":
		r.Publication = &types.Publication{Summary: o.PublicationInfo}
	}
	return r
}
