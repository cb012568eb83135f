// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv index and renders result pages.
package search

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultPageSize     = 10
	defaultRequestDelay = 3 * time.Second
	arxivAbsBase        = "https://arxiv.org/abs/"
)

// ArxivClient queries the arXiv API. Consecutive calls are spaced by the
// configured request delay.
type ArxivClient struct {
	Client    *http.Client
	UserAgent string

	limiter *rate.Limiter
}

// NewArxivClient returns a client that waits at least cfg.RequestDelay
// between requests (3s when unset).
func NewArxivClient(client *http.Client, cfg types.SearchConfig) *ArxivClient {
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = defaultRequestDelay
	}
	return &ArxivClient{
		Client:    client,
		UserAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Search fetches one page of results. The query string is passed through
// unchanged so arXiv field prefixes (ti:, au:, cat:) work.
func (c *ArxivClient) Search(ctx context.Context, p types.SearchParams) (*types.ResultPage, error) {
	const op = "arxiv search"

	if strings.TrimSpace(p.Query) == "" {
		return nil, types.NewError(types.KindNotFound, op, errors.New("empty query"))
	}
	size := p.MaxResults
	if size <= 0 {
		size = defaultPageSize
	}
	if size > types.MaxPageSize {
		size = types.MaxPageSize
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = types.SortSubmittedDate
	}
	sortOrder := p.SortOrder
	if sortOrder == "" {
		sortOrder = types.SortDescending
	}

	v := url.Values{}
	v.Set("search_query", p.Query)
	v.Set("start", strconv.Itoa(p.Start))
	v.Set("max_results", strconv.Itoa(size))
	v.Set("sortBy", string(sortBy))
	v.Set("sortOrder", string(sortOrder))

	feed, err := c.fetch(ctx, op, v)
	if err != nil {
		return nil, err
	}

	page := &types.ResultPage{
		Query: p.Query,
		Start: p.Start,
		Total: feed.TotalResults,
	}
	for _, e := range feed.Entries {
		paper, ok := e.toPaper()
		if !ok {
			continue
		}
		page.Papers = append(page.Papers, paper)
	}
	return page, nil
}

// Lookup fetches papers by arXiv identifier through the id_list parameter.
func (c *ArxivClient) Lookup(ctx context.Context, ids []string) ([]types.Paper, error) {
	const op = "arxiv lookup"

	if len(ids) == 0 {
		return nil, types.NewError(types.KindNotFound, op, errors.New("no identifiers"))
	}
	v := url.Values{}
	v.Set("id_list", strings.Join(ids, ","))
	v.Set("max_results", strconv.Itoa(len(ids)))

	feed, err := c.fetch(ctx, op, v)
	if err != nil {
		return nil, err
	}
	var papers []types.Paper
	for _, e := range feed.Entries {
		if p, ok := e.toPaper(); ok {
			papers = append(papers, p)
		}
	}
	if len(papers) == 0 {
		return nil, types.NewError(types.KindNotFound, op, fmt.Errorf("no entries for %s", strings.Join(ids, ", ")))
	}
	return papers, nil
}

// fetch waits for the rate limiter, performs the request and decodes the
// Atom feed, classifying every failure.
func (c *ArxivClient) fetch(ctx context.Context, op string, v url.Values) (*arxivFeed, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, types.NewError(types.KindTransport, op, fmt.Errorf("waiting for rate limit: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+v.Encode(), nil)
	if err != nil {
		return nil, types.NewError(types.KindTransport, op, fmt.Errorf("creating request: %w", err))
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.Do(ctx, c.Client, req)
	if err != nil {
		return nil, types.NewError(types.KindTransport, op, fmt.Errorf("arXiv API request: %w", err))
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, types.NewError(types.KindMalformed, op, fmt.Errorf("parsing arXiv response: %w", err))
	}

	if msg, ok := feed.apiError(); ok {
		return nil, types.NewError(types.KindUpstream, op, fmt.Errorf("arXiv API error: %s", msg))
	}
	return &feed, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	XMLName      xml.Name     `xml:"http://www.w3.org/2005/Atom feed"`
	TotalResults int          `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	StartIndex   int          `xml:"http://a9.com/-/spec/opensearch/1.1/ startIndex"`
	ItemsPerPage int          `xml:"http://a9.com/-/spec/opensearch/1.1/ itemsPerPage"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	Updated         string          `xml:"updated"`
	Authors         []arxivAuthor   `xml:"author"`
	Links           []arxivLink     `xml:"link"`
	Categories      []arxivCategory `xml:"category"`
	PrimaryCategory arxivCategory   `xml:"http://arxiv.org/schemas/atom primary_category"`
	DOI             string          `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef      string          `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// apiError detects the single error entry arXiv returns for bad queries
// (id under /api/errors, title "Error", message in the summary).
func (f *arxivFeed) apiError() (string, bool) {
	if len(f.Entries) != 1 {
		return "", false
	}
	e := f.Entries[0]
	if !strings.Contains(e.ID, "/api/errors") && collapse(e.Title) != "Error" {
		return "", false
	}
	msg := collapse(e.Summary)
	if msg == "" {
		msg = collapse(e.Title)
	}
	return msg, true
}

// toPaper converts an entry. Entries without an /abs/ id are skipped.
func (e arxivEntry) toPaper() (types.Paper, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:              id,
		Title:           collapse(e.Title),
		Abstract:        collapse(e.Summary),
		PrimaryCategory: e.PrimaryCategory.Term,
		DOI:             strings.TrimSpace(e.DOI),
		JournalRef:      collapse(e.JournalRef),
		AbsURL:          arxivAbsBase + id,
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	for _, l := range e.Links {
		p.Links = append(p.Links, types.Link{Href: l.Href, Rel: l.Rel, Type: l.Type, Title: l.Title})
		switch {
		case l.Rel == "alternate" && l.Type == "text/html":
			p.AbsURL = l.Href
		case l.Title == "pdf":
			p.PDFURL = l.Href
		case l.Type == "application/pdf" && p.PDFURL == "":
			p.PDFURL = l.Href
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Updated)); err == nil {
		p.Updated = t
	}
	return p, true
}

// extractArxivID pulls the versioned arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(idURL[idx+len(prefix):])
}

// collapse folds runs of whitespace, including the newlines arXiv embeds in
// titles and abstracts, into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
