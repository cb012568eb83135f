// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the research-assistant
// packages: papers and result pages from the arXiv index, remote file
// handles from the AI backend, related-work results, configuration, and the
// error taxonomy every collaborator reports failures in.
package types

import (
	"fmt"
	"strings"
)

// SortBy selects the arXiv result ordering field.
type SortBy string

const (
	SortRelevance       SortBy = "relevance"
	SortLastUpdatedDate SortBy = "lastUpdatedDate"
	SortSubmittedDate   SortBy = "submittedDate"
)

// SortOrder selects ascending or descending ordering.
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// SortFields lists the accepted SortBy values in display order.
var SortFields = []SortBy{SortRelevance, SortLastUpdatedDate, SortSubmittedDate}

// SortOrders lists the accepted SortOrder values.
var SortOrders = []SortOrder{SortAscending, SortDescending}

// MaxPageSize is the largest page the arXiv API serves in one request.
const MaxPageSize = 2000

// ParseSortBy resolves a case-insensitive prefix ("sub", "last") to a SortBy.
func ParseSortBy(s string) (SortBy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", NewError(KindNotFound, "parse sort field", fmt.Errorf("empty sort field"))
	}
	for _, f := range SortFields {
		if strings.HasPrefix(strings.ToLower(string(f)), s) {
			return f, nil
		}
	}
	return "", NewError(KindNotFound, "parse sort field", fmt.Errorf("unknown sort field %q", s))
}

// ParseSortOrder resolves a case-insensitive prefix ("asc", "d") to a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", NewError(KindNotFound, "parse sort order", fmt.Errorf("empty sort order"))
	}
	for _, o := range SortOrders {
		if strings.HasPrefix(string(o), s) {
			return o, nil
		}
	}
	return "", NewError(KindNotFound, "parse sort order", fmt.Errorf("unknown sort order %q", s))
}

// SearchParams is one request to the paper index.
type SearchParams struct {
	Query      string    `json:"query" yaml:"query"`
	Start      int       `json:"start" yaml:"start"`
	MaxResults int       `json:"max_results" yaml:"max_results"`
	SortBy     SortBy    `json:"sort_by" yaml:"sort_by"`
	SortOrder  SortOrder `json:"sort_order" yaml:"sort_order"`
}

// ResultPage is one page of papers for a query. Display numbers are
// Start+i+1 for the paper at position i and are only meaningful while this
// page is the current one.
type ResultPage struct {
	Query  string  `json:"query" yaml:"query"`
	Start  int     `json:"start" yaml:"start"`
	Total  int     `json:"total" yaml:"total"`
	Papers []Paper `json:"papers" yaml:"papers"`
}

// DisplayNumber returns the 1-based number shown for the paper at position i.
func (p *ResultPage) DisplayNumber(i int) int {
	return p.Start + i + 1
}

// Last returns the display number of the last paper on the page, or
// Start when the page is empty.
func (p *ResultPage) Last() int {
	return p.Start + len(p.Papers)
}

// Check reports index inconsistencies: a positive total with no papers, or a
// page that extends past the reported total.
func (p *ResultPage) Check() error {
	switch {
	case p.Total > 0 && len(p.Papers) == 0:
		return NewError(KindConsistency, "check page",
			fmt.Errorf("index reported %d results but returned none at offset %d", p.Total, p.Start))
	case p.Start+len(p.Papers) > p.Total:
		return NewError(KindConsistency, "check page",
			fmt.Errorf("page ends at %d, past reported total %d", p.Start+len(p.Papers), p.Total))
	}
	return nil
}
