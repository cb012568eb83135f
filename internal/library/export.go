// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes every library entry to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	entries, err := s.List(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	var data []byte
	switch strings.ToLower(format) {
	case "", FormatYAML:
		data, err = yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (use yaml or json)", format)
	}

	_, err = w.Write(data)
	return err
}

// FormatEntries writes a numbered listing of entries.
func FormatEntries(w io.Writer, entries []Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No library entries.")
		return
	}
	for i, e := range entries {
		year := ""
		if !e.Published.IsZero() {
			year = fmt.Sprintf(" (%d)", e.Published.Year())
		}
		fmt.Fprintf(w, "%3d. %s%s\n", i+1, e.ID, year)
		fmt.Fprintf(w, "     %s\n", e.Title)
		if len(e.Authors) > 0 {
			authors := e.Authors
			suffix := ""
			if len(authors) > 3 {
				authors, suffix = authors[:3], " et al."
			}
			fmt.Fprintf(w, "     %s%s\n", strings.Join(authors, ", "), suffix)
		}
		fmt.Fprintf(w, "     %s (downloaded %s)\n", e.PDFPath, e.DownloadedAt.Local().Format("2006-01-02 15:04"))
	}
}
