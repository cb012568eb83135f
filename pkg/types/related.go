// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Publication is the structured publication line a scholar search returns.
type Publication struct {
	Summary string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// RelatedResult is one related-work hit from the web/scholar search API.
type RelatedResult struct {
	Title       string       `json:"title" yaml:"title"`
	Link        string       `json:"link" yaml:"link"`
	Snippet     string       `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Publication *Publication `json:"publication,omitempty" yaml:"publication,omitempty"`
	Year        int          `json:"year,omitempty" yaml:"year,omitempty"`
	CitedBy     int          `json:"cited_by,omitempty" yaml:"cited_by,omitempty"`
}
