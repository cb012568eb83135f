// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/research-assistant/internal/ai"
	"github.com/pdiddy/research-assistant/internal/cite"
	"github.com/pdiddy/research-assistant/internal/related"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Ask downloads and uploads paper n if needed, then asks question about
// it. figure selects the figure- and table-focused prompt.
func (c *Controller) Ask(ctx context.Context, n int, question string, figure bool) (string, error) {
	if c.ai == nil {
		return "", ErrAIDisabled
	}
	f, err := c.prepare(ctx, n)
	if err != nil {
		return "", err
	}
	return c.ai.Ask(ctx, c.model, f, question, figure)
}

// Summarize summarizes paper n in style. The style is checked before any
// download.
func (c *Controller) Summarize(ctx context.Context, n int, style string) (string, error) {
	if c.ai == nil {
		return "", ErrAIDisabled
	}
	style, err := ai.SummaryStyle(style)
	if err != nil {
		return "", err
	}
	f, err := c.prepare(ctx, n)
	if err != nil {
		return "", err
	}
	return c.ai.Summarize(ctx, c.model, f, style)
}

// Extract pulls structured JSON of the given type out of paper n.
func (c *Controller) Extract(ctx context.Context, n int, key string) (string, error) {
	if c.ai == nil {
		return "", ErrAIDisabled
	}
	key, err := ai.ExtractionKey(key)
	if err != nil {
		return "", err
	}
	f, err := c.prepare(ctx, n)
	if err != nil {
		return "", err
	}
	return c.ai.Extract(ctx, c.model, f, key)
}

// Compare downloads and uploads every listed paper, in order, and then
// runs one comparison over all of them. Duplicate numbers are dropped and
// at least two distinct papers are required. If any paper cannot be
// prepared the comparison is not attempted.
func (c *Controller) Compare(ctx context.Context, nums []int, kind string) (string, error) {
	const op = "compare"

	if c.ai == nil {
		return "", ErrAIDisabled
	}
	nums = dedupe(nums)
	if len(nums) < 2 {
		return "", types.NewError(types.KindNotFound, op, errors.New("at least two distinct paper numbers are required"))
	}
	kind, err := ai.ComparisonType(kind)
	if err != nil {
		return "", err
	}

	files := make([]*types.RemoteFile, 0, len(nums))
	var failed []ItemError
	for _, n := range nums {
		f, err := c.prepare(ctx, n)
		if err != nil {
			failed = append(failed, ItemError{Number: n, Err: err})
			continue
		}
		files = append(files, f)
	}
	if len(failed) > 0 {
		errs := make([]error, len(failed))
		for i, e := range failed {
			errs[i] = e
		}
		return "", fmt.Errorf("%s: %d of %d papers could not be prepared: %w", op, len(failed), len(nums), errors.Join(errs...))
	}

	return c.ai.Compare(ctx, c.model, files, kind)
}

// Related finds work related to paper n. With the AI backend available the
// query is built from model-suggested keywords; otherwise, or when keyword
// generation fails, from the title and abstract. Results matching the
// paper's own title are dropped.
func (c *Controller) Related(ctx context.Context, n int) ([]types.RelatedResult, error) {
	if c.related == nil {
		return nil, ErrRelatedDisabled
	}
	paper, err := c.Resolve(n)
	if err != nil {
		return nil, err
	}

	query := related.BuildQuery(paper)
	if c.ai != nil {
		keywords, err := c.ai.Keywords(ctx, c.model, paper)
		if err != nil {
			c.log.Info("keyword generation failed, using title query", "id", paper.ID, "error", err)
		} else {
			query = related.KeywordQuery(paper, keywords)
		}
	}
	c.log.Debug("related-work query", "id", paper.ID, "query", query)

	results, err := c.related.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	results = related.FilterOriginal(results, paper)
	if len(results) == 0 {
		return nil, types.ErrNoResults
	}
	return results, nil
}

// Cite formats the citation for paper n. An empty style selects BibTeX.
func (c *Controller) Cite(n int, style string) (string, error) {
	paper, err := c.Resolve(n)
	if err != nil {
		return "", err
	}
	return cite.Format(paper, style)
}

func dedupe(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := nums[:0:0]
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
