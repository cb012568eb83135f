// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite formats paper records as citations. Every function is pure
// apart from the access date MLA embeds.
package cite

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Style names a citation format.
type Style string

const (
	BibTeX  Style = "bibtex"
	APA     Style = "apa"
	MLA     Style = "mla"
	Chicago Style = "chicago"
	IEEE    Style = "ieee"
	CSL     Style = "csl"
)

// DefaultStyle is used when no style is given.
const DefaultStyle = BibTeX

const (
	unknownAuthor     = "Unknown Author"
	maxBibtexAbstract = 500
	doiBase           = "https://doi.org/"
)

var formatters = map[Style]func(*types.Paper) (string, error){
	BibTeX:  wrap(formatBibTeX),
	APA:     wrap(formatAPA),
	MLA:     wrap(formatMLA),
	Chicago: wrap(formatChicago),
	IEEE:    wrap(formatIEEE),
	CSL:     formatCSL,
}

// now is the clock MLA access dates are taken from. Tests pin it.
var now = time.Now

// Styles returns the supported style names, sorted.
func Styles() []string {
	names := make([]string, 0, len(formatters))
	for s := range formatters {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// Format renders paper in the given style. An empty style selects BibTeX;
// an unknown style is a not-found error.
func Format(paper *types.Paper, style string) (string, error) {
	s := Style(strings.ToLower(strings.TrimSpace(style)))
	if s == "" {
		s = DefaultStyle
	}
	fn, ok := formatters[s]
	if !ok {
		return "", types.NewError(types.KindNotFound, "cite",
			fmt.Errorf("unsupported citation format %q (supported: %s)", style, strings.Join(Styles(), ", ")))
	}
	return fn(paper)
}

func wrap(fn func(*types.Paper) string) func(*types.Paper) (string, error) {
	return func(p *types.Paper) (string, error) { return fn(p), nil }
}

// formatBibTeX builds an @article entry keyed by the identifier with every
// non-alphanumeric character removed.
func formatBibTeX(p *types.Paper) string {
	authors := unknownAuthor
	if len(p.Authors) > 0 {
		authors = strings.Join(p.Authors, " and ")
	}

	lines := []string{
		fmt.Sprintf("@article{%s,", bibKey(p.ID)),
		fmt.Sprintf("  title = {%s},", p.Title),
		fmt.Sprintf("  author = {%s},", authors),
		fmt.Sprintf("  year = {%s},", year(p)),
		fmt.Sprintf("  month = {%d},", month(p)),
		fmt.Sprintf("  eprint = {%s},", p.ID),
		"  archivePrefix = {arXiv},",
		fmt.Sprintf("  primaryClass = {%s},", p.PrimaryCategory),
	}
	if p.DOI != "" {
		lines = append(lines, fmt.Sprintf("  doi = {%s},", p.DOI))
	}
	if p.JournalRef != "" {
		lines = append(lines, fmt.Sprintf("  journal = {%s},", p.JournalRef))
	}
	if p.AbsURL != "" {
		lines = append(lines, fmt.Sprintf("  url = {%s},", p.AbsURL))
	}
	if p.Abstract != "" {
		lines = append(lines, fmt.Sprintf("  abstract = {%s},", truncate(p.Abstract, maxBibtexAbstract)))
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// formatAPA starts with the first author's surname and ends with the DOI
// URL, or the abstract page when there is no DOI.
func formatAPA(p *types.Paper) string {
	var authors string
	names := parsedAuthors(p)
	switch len(names) {
	case 0:
		authors = unknownAuthor + "."
	case 1:
		authors = names[0].apa()
	case 2:
		authors = names[0].apa() + ", & " + names[1].apa()
	default:
		authors = names[0].apa() + ", et al."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s). %s.", authors, year(p), strings.TrimSuffix(p.Title, "."))
	if p.JournalRef != "" {
		fmt.Fprintf(&b, " %s.", p.JournalRef)
	} else {
		fmt.Fprintf(&b, " arXiv preprint arXiv:%s.", p.BaseID())
	}
	if link := link(p); link != "" {
		fmt.Fprintf(&b, " %s", link)
	}
	return b.String()
}

func formatMLA(p *types.Paper) string {
	var authors string
	names := parsedAuthors(p)
	switch len(names) {
	case 0:
		authors = unknownAuthor
	case 1:
		authors = names[0].inverted()
	case 2:
		authors = names[0].inverted() + ", and " + names[1].full()
	default:
		authors = names[0].inverted() + ", et al"
	}

	s := fmt.Sprintf("%s. \"%s.\" arXiv, %s.", authors, strings.TrimSuffix(p.Title, "."), year(p))
	if p.AbsURL != "" {
		s += fmt.Sprintf(" %s. Accessed %s.", p.AbsURL, now().Format("2 Jan. 2006"))
	}
	return s
}

func formatChicago(p *types.Paper) string {
	var authors string
	names := parsedAuthors(p)
	switch len(names) {
	case 0:
		authors = unknownAuthor
	case 1:
		authors = names[0].inverted()
	case 2:
		authors = names[0].inverted() + ", and " + names[1].full()
	default:
		authors = names[0].inverted() + ", et al"
	}

	s := fmt.Sprintf("%s. \"%s.\" %s.", authors, strings.TrimSuffix(p.Title, "."), monthYear(p))
	if l := link(p); l != "" {
		s += " " + l + "."
	}
	return s
}

func formatIEEE(p *types.Paper) string {
	var authors string
	names := parsedAuthors(p)
	switch len(names) {
	case 0:
		authors = unknownAuthor
	case 1:
		authors = names[0].ieee()
	case 2:
		authors = names[0].ieee() + " and " + names[1].ieee()
	default:
		authors = names[0].ieee() + " et al."
	}

	s := fmt.Sprintf("%s, \"%s,\" ", authors, strings.TrimSuffix(p.Title, "."))
	if p.JournalRef != "" {
		s += fmt.Sprintf("%s, %s.", p.JournalRef, year(p))
	} else {
		s += fmt.Sprintf("arXiv preprint arXiv:%s, %s.", p.BaseID(), year(p))
	}
	if p.DOI != "" {
		s += fmt.Sprintf(" doi: %s.", p.DOI)
	}
	return s
}

func bibKey(id string) string {
	var b strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func link(p *types.Paper) string {
	if p.DOI != "" {
		return doiBase + p.DOI
	}
	return p.AbsURL
}

func year(p *types.Paper) string {
	if y := p.Year(); y > 0 {
		return fmt.Sprint(y)
	}
	return "n.d."
}

func month(p *types.Paper) int {
	if p.Published.IsZero() {
		return 1
	}
	return int(p.Published.Month())
}

func monthYear(p *types.Paper) string {
	if p.Published.IsZero() {
		return "n.d."
	}
	return p.Published.Format("January 2006")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
