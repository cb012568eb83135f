// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// arxivPDFBase is used when a paper carries no PDF link at all. Declared as
// a var so tests can substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// PDFLink resolves the PDF URL for a paper. A link titled "pdf" wins over a
// link that only has the application/pdf type; the paper's PDFURL and then
// the canonical arXiv PDF address are the fallbacks. Protocol-relative
// links are promoted to https.
func PDFLink(p *types.Paper) (string, error) {
	var typed string
	for _, l := range p.Links {
		if l.Title == "pdf" && l.Href != "" {
			return normalizeLink(l.Href), nil
		}
		if typed == "" && l.Type == "application/pdf" && l.Href != "" {
			typed = l.Href
		}
	}
	switch {
	case typed != "":
		return normalizeLink(typed), nil
	case p.PDFURL != "":
		return normalizeLink(p.PDFURL), nil
	case p.ID != "":
		return arxivPDFBase + p.ID, nil
	}
	return "", types.NewError(types.KindNotFound, "resolve pdf link", fmt.Errorf("no PDF link for %q", p.Title))
}

func normalizeLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// SafeFilename turns an arXiv identifier into a filename: every rune other
// than ASCII letters, digits, '.' and '-' becomes '_'
// ("hep-th/9901001v3" becomes "hep-th_9901001v3.pdf").
func SafeFilename(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".pdf"
}
