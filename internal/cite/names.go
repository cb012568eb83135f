// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// name is an author split into given and family parts. Single-token names
// keep everything in literal.
type name struct {
	given   string
	family  string
	literal string
}

// parseAuthorName splits a full name on the last space: everything before
// is given, the last token is family.
func parseAuthorName(s string) name {
	s = strings.TrimSpace(s)
	if s == "" {
		return name{}
	}
	idx := strings.LastIndex(s, " ")
	if idx < 0 {
		return name{literal: s}
	}
	return name{given: strings.TrimSpace(s[:idx]), family: s[idx+1:]}
}

func parsedAuthors(p *types.Paper) []name {
	var out []name
	for _, a := range p.Authors {
		if n := parseAuthorName(a); n != (name{}) {
			out = append(out, n)
		}
	}
	return out
}

func (n name) full() string {
	if n.literal != "" {
		return n.literal
	}
	return n.given + " " + n.family
}

// inverted renders "Family, Given".
func (n name) inverted() string {
	if n.literal != "" {
		return n.literal
	}
	return n.family + ", " + n.given
}

// apa renders "Family, G. M.".
func (n name) apa() string {
	if n.literal != "" {
		return n.literal
	}
	return n.family + ", " + initials(n.given)
}

// ieee renders "G. M. Family".
func (n name) ieee() string {
	if n.literal != "" {
		return n.literal
	}
	return initials(n.given) + " " + n.family
}

// initials abbreviates each given name ("Mary-Ann Lee" gives "M.-A. L.").
func initials(given string) string {
	var parts []string
	for _, word := range strings.Fields(given) {
		var hy []string
		for _, piece := range strings.Split(word, "-") {
			r := []rune(strings.TrimSuffix(piece, "."))
			if len(r) == 0 {
				continue
			}
			hy = append(hy, string(r[0])+".")
		}
		if len(hy) > 0 {
			parts = append(parts, strings.Join(hy, "-"))
		}
	}
	return strings.Join(parts, " ")
}
