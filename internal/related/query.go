// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package related

import (
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	abstractMinLen    = 100
	abstractPrefixLen = 200
	maxQueryKeywords  = 3
	excludedAuthors   = 2
	titlePrefixWords  = 3
)

// BuildQuery derives a search query from the paper's title, adding the
// start of the abstract when the abstract is long enough to help.
func BuildQuery(p *types.Paper) string {
	q := strings.TrimSpace(p.Title)
	abstract := []rune(strings.TrimSpace(p.Abstract))
	if len(abstract) > abstractMinLen {
		n := min(len(abstract), abstractPrefixLen)
		q += " " + strings.TrimSpace(string(abstract[:n]))
	}
	return q
}

// KeywordQuery builds a query from model-extracted keywords: the most
// important keywords (quoted when multi-word), minus the first authors'
// surnames and minus titles starting like the paper's own.
func KeywordQuery(p *types.Paper, keywords []string) string {
	var parts []string
	for _, kw := range keywords {
		if len(parts) == maxQueryKeywords {
			break
		}
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.ContainsRune(kw, ' ') {
			kw = `"` + strings.Trim(kw, `"`) + `"`
		}
		parts = append(parts, kw)
	}
	if len(parts) == 0 {
		return BuildQuery(p)
	}

	for i, a := range p.Authors {
		if i == excludedAuthors {
			break
		}
		if f := strings.Fields(a); len(f) > 0 {
			parts = append(parts, "-"+f[len(f)-1])
		}
	}
	if words := strings.Fields(p.Title); len(words) > 0 {
		n := min(len(words), titlePrefixWords)
		parts = append(parts, `-intitle:"`+strings.Join(words[:n], " ")+`"`)
	}
	return strings.Join(parts, " ")
}

// FilterOriginal drops results that are the paper itself, matched by a
// case-insensitive title prefix in either direction.
func FilterOriginal(results []types.RelatedResult, p *types.Paper) []types.RelatedResult {
	title := normalizeTitle(p.Title)
	if title == "" {
		return results
	}
	out := make([]types.RelatedResult, 0, len(results))
	for _, r := range results {
		rt := normalizeTitle(r.Title)
		if rt != "" && (strings.HasPrefix(rt, title) || strings.HasPrefix(title, rt)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(strings.TrimSpace(s), "...")
	s = strings.TrimSuffix(s, "…")
	return strings.Join(strings.Fields(s), " ")
}
