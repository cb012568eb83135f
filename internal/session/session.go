// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the interactive research session: the current
// query and result page, the display-number addressing scheme, and the
// caches of downloaded PDFs and AI backend uploads. A Controller is not
// safe for concurrent use; commands run one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/research-assistant/internal/library"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Index runs paged queries against the paper index.
type Index interface {
	Search(ctx context.Context, p types.SearchParams) (*types.ResultPage, error)
}

// Fetcher materializes a paper's PDF locally. skipped reports that the
// file was already present and no network I/O happened.
type Fetcher interface {
	Fetch(ctx context.Context, paper *types.Paper) (path string, skipped bool, err error)
}

// Analyzer is the AI backend surface the session uses.
type Analyzer interface {
	Upload(ctx context.Context, path string) (*types.RemoteFile, error)
	Status(ctx context.Context, name string) (*types.RemoteFile, error)
	Delete(ctx context.Context, name string) error
	Ask(ctx context.Context, model string, f *types.RemoteFile, question string, figure bool) (string, error)
	Summarize(ctx context.Context, model string, f *types.RemoteFile, style string) (string, error)
	Extract(ctx context.Context, model string, f *types.RemoteFile, key string) (string, error)
	Compare(ctx context.Context, model string, files []*types.RemoteFile, kind string) (string, error)
	Keywords(ctx context.Context, model string, paper *types.Paper) ([]string, error)
}

// RelatedSearcher looks up related work for a free-text query.
type RelatedSearcher interface {
	Search(ctx context.Context, query string) ([]types.RelatedResult, error)
}

// Library records downloaded papers across sessions.
type Library interface {
	Record(ctx context.Context, paper *types.Paper, pdfPath string) error
	List(ctx context.Context, limit int) ([]library.Entry, error)
}

const defaultMaxResults = 10

var (
	// ErrQuit is returned by Dispatch for the quit command.
	ErrQuit = errors.New("quit")

	// ErrAIDisabled is returned by commands that need the AI backend when
	// no API key is configured.
	ErrAIDisabled = errors.New("AI commands are disabled: set GEMINI_API_KEY to enable them")

	// ErrRelatedDisabled is returned by related-work lookups when no
	// Serper key is configured.
	ErrRelatedDisabled = errors.New("related-work search is disabled: set SERPER_API_KEY to enable it")
)

// Options configures a Controller. Index and Fetcher are required; AI,
// Related and Library may be nil, which disables the commands that need
// them.
type Options struct {
	Index   Index
	Fetcher Fetcher
	AI      Analyzer
	Related RelatedSearcher
	Library Library

	MaxResults int
	SortBy     types.SortBy
	SortOrder  types.SortOrder
	Model      string

	// WrapWidth is the column width used when formatting output.
	WrapWidth int

	Log *slog.Logger
}

// Controller owns all mutable session state. Every mutation flows through
// its methods.
type Controller struct {
	index   Index
	fetcher Fetcher
	ai      Analyzer
	related RelatedSearcher
	library Library
	log     *slog.Logger

	params  types.SearchParams
	page    *types.ResultPage
	pageNum int
	total   int
	model   string
	width   int

	// downloads maps display number to local PDF path.
	downloads map[int]string

	// uploads maps local PDF path to its AI backend handle.
	uploads map[string]*types.RemoteFile
}

// New builds a Controller with no active query.
func New(opts Options) *Controller {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		index:   opts.Index,
		fetcher: opts.Fetcher,
		ai:      opts.AI,
		related: opts.Related,
		library: opts.Library,
		log:     log,
		params: types.SearchParams{
			MaxResults: clampMax(opts.MaxResults),
			SortBy:     opts.SortBy,
			SortOrder:  opts.SortOrder,
		},
		model:     opts.Model,
		width:     opts.WrapWidth,
		downloads: make(map[int]string),
		uploads:   make(map[string]*types.RemoteFile),
	}
	if opts.MaxResults <= 0 {
		c.params.MaxResults = defaultMaxResults
	}
	if c.params.SortBy == "" {
		c.params.SortBy = types.SortSubmittedDate
	}
	if c.params.SortOrder == "" {
		c.params.SortOrder = types.SortDescending
	}
	return c
}

// AIEnabled reports whether AI commands are available.
func (c *Controller) AIEnabled() bool { return c.ai != nil }

// RelatedEnabled reports whether related-work search is available.
func (c *Controller) RelatedEnabled() bool { return c.related != nil }

// Params returns the current query and page parameters.
func (c *Controller) Params() types.SearchParams { return c.params }

// Page returns the current result page, or nil if none is loaded.
func (c *Controller) Page() *types.ResultPage { return c.page }

// Total returns the result count reported for the active query.
func (c *Controller) Total() int { return c.total }

// Model returns the selected AI model.
func (c *Controller) Model() string { return c.model }

// PageNumber returns the 1-based number of the displayed page within the
// current query. Page sizes may vary between fetches, so pages are counted
// rather than derived from the offset.
func (c *Controller) PageNumber() int {
	if c.pageNum < 1 {
		return 1
	}
	return c.pageNum
}

// Resolve maps a display number on the current page to its paper.
func (c *Controller) Resolve(n int) (*types.Paper, error) {
	if c.page == nil {
		return nil, types.NewError(types.KindNotFound, "resolve", errors.New("no results loaded; run a query first"))
	}
	if len(c.page.Papers) == 0 {
		if c.total > 0 {
			return nil, types.NewError(types.KindNotFound, "resolve",
				fmt.Errorf("the index reported %d results but returned none at offset %d; run the query again", c.total, c.page.Start))
		}
		return nil, types.NewError(types.KindNotFound, "resolve", errors.New("the current query has no results"))
	}
	i := n - 1 - c.page.Start
	if i < 0 || i >= len(c.page.Papers) {
		return nil, types.NewError(types.KindNotFound, "resolve",
			fmt.Errorf("invalid result number %d (showing %d-%d)", n, c.page.Start+1, c.page.Last()))
	}
	return &c.page.Papers[i], nil
}

// RunQuery starts a new query at offset zero with the current page size
// and sort. The download and upload maps are cleared even when query is
// identical to the previous one. On failure no page is loaded.
func (c *Controller) RunQuery(ctx context.Context, query string) (*types.ResultPage, error) {
	return c.RunQueryFrom(ctx, query, 0)
}

// RunQueryFrom is RunQuery with the first page starting at offset start.
// Display numbers on that page begin at start+1.
func (c *Controller) RunQueryFrom(ctx context.Context, query string, start int) (*types.ResultPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.NewError(types.KindNotFound, "query", errors.New("query cannot be empty"))
	}
	if start < 0 {
		return nil, types.NewError(types.KindNotFound, "query", fmt.Errorf("start offset %d cannot be negative", start))
	}

	c.params.Query = query
	c.params.Start = start
	c.resetCaches()

	page, err := c.index.Search(ctx, c.params)
	if err != nil {
		c.page = nil
		c.pageNum = 0
		c.total = 0
		return nil, err
	}

	c.page = page
	c.pageNum = 1
	c.total = page.Total
	c.checkPage(page)
	c.log.Debug("query complete", "query", query, "total", page.Total, "returned", len(page.Papers))
	return page, nil
}

// NextPage fetches the page following the current one. The offset advances
// by the number of papers actually returned on the current page. When the
// current page already reaches the reported total it returns
// types.ErrEndOfResults and leaves the offset unchanged. A failed fetch
// restores the offset of the displayed page and keeps that page.
func (c *Controller) NextPage(ctx context.Context) (*types.ResultPage, error) {
	if c.params.Query == "" || c.page == nil {
		return nil, types.NewError(types.KindNotFound, "next page", errors.New("no active query"))
	}
	lastLen := len(c.page.Papers)
	if lastLen == 0 || c.page.Start+lastLen >= c.total {
		return nil, types.ErrEndOfResults
	}

	shown := c.page.Start
	c.params.Start = shown + lastLen

	page, err := c.index.Search(ctx, c.params)
	if err != nil {
		c.params.Start = shown
		return nil, err
	}
	if len(page.Papers) == 0 {
		c.params.Start = shown
		err := page.Check()
		if err == nil {
			return nil, types.ErrEndOfResults
		}
		c.log.Warn("index inconsistency", "query", c.params.Query, "start", page.Start, "error", err)
		return nil, err
	}

	c.page = page
	c.pageNum++
	c.total = page.Total
	c.checkPage(page)
	return page, nil
}

// SetMaxResults sets the page size, clamped to 1..types.MaxPageSize, and
// returns the value applied. The displayed page and its offset are kept;
// the new size applies from the next fetch.
func (c *Controller) SetMaxResults(n int) int {
	c.params.MaxResults = clampMax(n)
	return c.params.MaxResults
}

// SetSort sets the sort field and, when order is non-empty, the sort
// order. Both accept unambiguous prefixes. The displayed page is kept;
// the new order applies from the next query.
func (c *Controller) SetSort(field, order string) error {
	by, err := types.ParseSortBy(field)
	if err != nil {
		return err
	}
	so := c.params.SortOrder
	if order != "" {
		if so, err = types.ParseSortOrder(order); err != nil {
			return err
		}
	}
	c.params.SortBy = by
	c.params.SortOrder = so
	return nil
}

// SetModel selects the AI model used by later commands.
func (c *Controller) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return types.NewError(types.KindNotFound, "set model", errors.New("model name cannot be empty"))
	}
	c.model = model
	return nil
}

func (c *Controller) checkPage(page *types.ResultPage) {
	if err := page.Check(); err != nil {
		c.log.Warn("index inconsistency", "query", page.Query, "start", page.Start, "error", err)
	}
}

func (c *Controller) resetCaches() {
	c.downloads = make(map[int]string)
	c.uploads = make(map[string]*types.RemoteFile)
}

func clampMax(n int) int {
	switch {
	case n < 1:
		return 1
	case n > types.MaxPageSize:
		return types.MaxPageSize
	}
	return n
}
