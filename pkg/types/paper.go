// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"strings"
	"time"
)

// Link is one <link> element of an arXiv Atom entry.
type Link struct {
	Href  string `json:"href" yaml:"href"`
	Rel   string `json:"rel,omitempty" yaml:"rel,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Paper holds the metadata the index reports for one paper. A Paper is
// never modified after it is parsed from a result page.
type Paper struct {
	// ID is the versioned arXiv identifier (e.g. "2301.07041v2").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract with whitespace collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Published is the date of the first version.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the date of the latest version.
	Updated time.Time `json:"updated" yaml:"updated"`

	PrimaryCategory string   `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
	Categories      []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// DOI and JournalRef are only present when the authors supplied them.
	DOI        string `json:"doi,omitempty" yaml:"doi,omitempty"`
	JournalRef string `json:"journal_ref,omitempty" yaml:"journal_ref,omitempty"`

	// AbsURL is the abstract page; PDFURL is the direct PDF link if known.
	AbsURL string `json:"abs_url" yaml:"abs_url"`
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	Links []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// BaseID returns the identifier without its version suffix
// ("2301.07041v2" becomes "2301.07041").
func (p *Paper) BaseID() string {
	id := p.ID
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			return id[:vIdx]
		}
	}
	return id
}

// Year returns the publication year, or 0 when the date is unknown.
func (p *Paper) Year() int {
	if p.Published.IsZero() {
		return 0
	}
	return p.Published.Year()
}
