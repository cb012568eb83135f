// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package related

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// FormatResults writes a numbered list of related-work results.
func FormatResults(w io.Writer, results []types.RelatedResult, width int) {
	if width <= 0 {
		width = 100
	}
	for i, r := range results {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, r.Title)
		if r.Link != "" {
			fmt.Fprintf(w, "    Link: %s\n", r.Link)
		}
		if r.Publication != nil {
			if r.Publication.Summary != "" {
				fmt.Fprintf(w, "    Publication: %s\n", r.Publication.Summary)
			}
			if len(r.Publication.Authors) > 0 {
				fmt.Fprintf(w, "    Authors: %s\n", strings.Join(r.Publication.Authors, ", "))
			}
		}
		if r.Year > 0 || r.CitedBy > 0 {
			fmt.Fprintf(w, "    Year: %d  Cited by: %d\n", r.Year, r.CitedBy)
		}
		if r.Snippet != "" {
			fmt.Fprintln(w, indent.String(wordwrap.String(r.Snippet, width-6), 6))
		}
	}
}
