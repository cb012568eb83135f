// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

func TestPDFLink(t *testing.T) {
	tests := []struct {
		name  string
		paper types.Paper
		want  string
	}{
		{
			name: "titled pdf link preferred over typed link",
			paper: types.Paper{ID: "1", Links: []types.Link{
				{Href: "http://example.com/typed", Type: "application/pdf"},
				{Href: "http://example.com/titled", Title: "pdf"},
			}},
			want: "http://example.com/titled",
		},
		{
			name: "typed link when no title",
			paper: types.Paper{ID: "1", Links: []types.Link{
				{Href: "http://example.com/abs", Type: "text/html"},
				{Href: "http://example.com/typed", Type: "application/pdf"},
			}},
			want: "http://example.com/typed",
		},
		{
			name:  "protocol relative link",
			paper: types.Paper{ID: "1", Links: []types.Link{{Href: "//arxiv.org/pdf/1", Title: "pdf"}}},
			want:  "https://arxiv.org/pdf/1",
		},
		{
			name:  "pdf url field",
			paper: types.Paper{ID: "1", PDFURL: "http://arxiv.org/pdf/1v1"},
			want:  "http://arxiv.org/pdf/1v1",
		},
		{
			name:  "canonical fallback",
			paper: types.Paper{ID: "2301.07041v2"},
			want:  arxivPDFBase + "2301.07041v2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PDFLink(&tt.paper)
			if err != nil {
				t.Fatalf("PDFLink: %v", err)
			}
			if got != tt.want {
				t.Errorf("PDFLink = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFLink_None(t *testing.T) {
	_, err := PDFLink(&types.Paper{Title: "No ID"})
	if !types.IsKind(err, types.KindNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2301.07041v2", "2301.07041v2.pdf"},
		{"hep-th/9901001v3", "hep-th_9901001v3.pdf"},
		{"a b:c", "a_b_c.pdf"},
		{"ünï", "_n_.pdf"},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func newPDFServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		case r.URL.Path == "/truncated":
			w.Header().Set("Content-Length", "1000")
			fmt.Fprint(w, "%PDF")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testFetcher(ts *httptest.Server, dir string, w *bytes.Buffer) *Fetcher {
	return NewFetcher(ts.Client(), types.AcquisitionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "research-assistant-test/0.1",
		},
		DownloadDir: dir,
	}, w)
}

func TestFetch_DownloadsThenSkips(t *testing.T) {
	var calls int32
	ts := newPDFServer(t, &calls)
	dir := filepath.Join(t.TempDir(), "arxiv_downloads")
	var buf bytes.Buffer
	f := testFetcher(ts, dir, &buf)

	paper := &types.Paper{
		ID:      "2301.07041v2",
		Title:   "Test Paper Title",
		Authors: []string{"Alice Smith"},
		Links:   []types.Link{{Href: ts.URL + "/pdf/2301.07041v2", Title: "pdf"}},
	}

	path, skipped, err := f.Fetch(context.Background(), paper)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if skipped {
		t.Error("expected download, got skipped")
	}
	if want := filepath.Join(dir, "2301.07041v2.pdf"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if string(data) != fakePDFContent {
		t.Errorf("PDF content = %q, want %q", string(data), fakePDFContent)
	}

	meta, err := ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.Title != "Test Paper Title" {
		t.Errorf("meta.Title = %q", meta.Title)
	}
	if meta.PDFPath != path {
		t.Errorf("meta.PDFPath = %q, want %q", meta.PDFPath, path)
	}
	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("progress output missing 100%%: %q", buf.String())
	}

	path2, skipped, err := f.Fetch(context.Background(), paper)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if !skipped || path2 != path {
		t.Errorf("second Fetch = (%q, %v), want (%q, true)", path2, skipped, path)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestFetch_FailureLeavesNoFiles(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"http 404", "/missing"},
		{"truncated body", "/truncated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := newPDFServer(t, &calls)
			dir := t.TempDir()
			var buf bytes.Buffer
			f := testFetcher(ts, dir, &buf)

			paper := &types.Paper{ID: "1234.5678v1", Links: []types.Link{{Href: ts.URL + tt.path, Title: "pdf"}}}
			_, _, err := f.Fetch(context.Background(), paper)
			if err == nil {
				t.Fatal("expected error")
			}
			if !types.IsKind(err, types.KindTransport) {
				t.Errorf("kind = %q, want transport", types.KindOf(err))
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("ReadDir: %v", err)
			}
			if len(entries) != 0 {
				names := make([]string, len(entries))
				for i, e := range entries {
					names[i] = e.Name()
				}
				t.Errorf("leftover files: %v", names)
			}
		})
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
