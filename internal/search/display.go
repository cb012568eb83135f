// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultWidth    = 100
	fieldIndent     = 4
	maxAbstractRune = 400
)

// FormatPage writes a numbered listing of page to w, wrapping long fields
// at width columns. A page with no papers prints a one-line notice that
// distinguishes an exhausted listing from a query with no matches.
func FormatPage(w io.Writer, page *types.ResultPage, width int) {
	if width <= 0 {
		width = defaultWidth
	}
	if page == nil || len(page.Papers) == 0 {
		switch {
		case page != nil && page.Total > 0 && page.Start > 0:
			fmt.Fprintln(w, "[-] No more results found.")
		default:
			fmt.Fprintln(w, "[-] No results found for this query.")
		}
		return
	}

	fmt.Fprintf(w, "\n--- Results %d - %d (Total Found: %d) ---\n", page.Start+1, page.Last(), page.Total)
	for i := range page.Papers {
		p := &page.Papers[i]
		fmt.Fprintf(w, "\n[%d] ID: %s (Primary Cat: %s)\n", page.DisplayNumber(i), p.ID, orNA(p.PrimaryCategory))
		field(w, "Title", p.Title, width)
		field(w, "Authors", strings.Join(p.Authors, ", "), width)
		if !p.Published.IsZero() {
			fmt.Fprintf(w, "    Published: %s\n", p.Published.Format("2006-01-02"))
		}
		if !p.Updated.IsZero() && !p.Updated.Equal(p.Published) {
			fmt.Fprintf(w, "    Updated: %s\n", p.Updated.Format("2006-01-02"))
		}
		if len(p.Categories) > 0 {
			fmt.Fprintf(w, "    Categories: %s\n", strings.Join(p.Categories, ", "))
		}
		if p.DOI != "" {
			fmt.Fprintf(w, "    DOI: %s\n", p.DOI)
		}
		if p.JournalRef != "" {
			fmt.Fprintf(w, "    Journal Ref: %s\n", p.JournalRef)
		}
		fmt.Fprintf(w, "    Abstract Link: %s\n", p.AbsURL)
		fmt.Fprintf(w, "    PDF Link: %s\n", orNA(p.PDFURL))
		field(w, "Summary", truncate(p.Abstract, maxAbstractRune), width)
		fmt.Fprintln(w, strings.Repeat("-", min(width, 80)))
	}
}

// Wrap word-wraps text at width and indents every line by n spaces.
func Wrap(text string, width int, n uint) string {
	if width <= 0 {
		width = defaultWidth
	}
	wrapped := wordwrap.String(text, width-int(n))
	return indent.String(wrapped, n)
}

func field(w io.Writer, label, value string, width int) {
	if value == "" {
		value = "N/A"
	}
	body := Wrap(value, width, fieldIndent+2)
	fmt.Fprintf(w, "%s%s:\n%s\n", strings.Repeat(" ", fieldIndent), label, body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
