// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads paper PDFs and writes metadata sidecars.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Metadata is the YAML sidecar written next to each downloaded PDF.
type Metadata struct {
	types.Paper  `yaml:",inline"`
	PDFPath      string    `yaml:"pdf_path"`
	SourceURL    string    `yaml:"source_url"`
	DownloadedAt time.Time `yaml:"downloaded_at"`
}

// Fetcher materializes paper PDFs in Dir. It is safe to call Fetch
// repeatedly for the same paper: an existing file is never downloaded again.
type Fetcher struct {
	Client    *http.Client
	Dir       string
	UserAgent string

	// Progress receives status lines and the download progress bar.
	Progress io.Writer
}

// NewFetcher builds a Fetcher from cfg. A nil progress writer discards output.
func NewFetcher(client *http.Client, cfg types.AcquisitionConfig, progress io.Writer) *Fetcher {
	if progress == nil {
		progress = io.Discard
	}
	return &Fetcher{
		Client:    client,
		Dir:       cfg.DownloadDir,
		UserAgent: cfg.UserAgent,
		Progress:  progress,
	}
}

// Path returns where the PDF for paper is stored.
func (f *Fetcher) Path(paper *types.Paper) string {
	return filepath.Join(f.Dir, SafeFilename(paper.ID))
}

// Fetch downloads the PDF for paper unless it already exists. The skipped
// return value reports whether the download was skipped.
func (f *Fetcher) Fetch(ctx context.Context, paper *types.Paper) (path string, skipped bool, err error) {
	path = f.Path(paper)
	w := f.progress()

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", filepath.Base(path))
		return path, true, nil
	}

	pdfURL, err := PDFLink(paper)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", f.Dir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", pdfURL)

	if err := f.downloadFile(ctx, pdfURL, path); err != nil {
		return "", false, types.NewError(types.KindTransport, "download "+paper.ID, err)
	}

	meta := Metadata{
		Paper:        *paper,
		PDFPath:      path,
		SourceURL:    pdfURL,
		DownloadedAt: time.Now().UTC(),
	}
	if err := writeMetadata(meta, sidecarPath(path)); err != nil {
		fmt.Fprintf(w, "  warning: writing metadata: %v\n", err)
	}

	fmt.Fprintf(w, "saved: %s\n", path)
	return path, false, nil
}

// downloadFile streams url into destPath through a temporary file in the
// same directory. The temporary file is removed on any failure, so an
// interrupted download never leaves a partial PDF behind.
func (f *Fetcher) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.Do(ctx, f.Client, req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	pw := newProgressWriter(f.progress(), filepath.Base(destPath), resp.ContentLength)
	_, copyErr := io.Copy(io.MultiWriter(tmpFile, pw), resp.Body)
	pw.done()
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if resp.ContentLength > 0 && pw.written != resp.ContentLength {
		os.Remove(tmpPath)
		return fmt.Errorf("short download: got %d of %d bytes", pw.written, resp.ContentLength)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (f *Fetcher) progress() io.Writer {
	if f.Progress == nil {
		return io.Discard
	}
	return f.Progress
}

func sidecarPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".yaml"
}

// writeMetadata writes the sidecar YAML for a downloaded PDF.
func writeMetadata(meta Metadata, path string) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads the sidecar written for pdfPath.
func ReadMetadata(pdfPath string) (*Metadata, error) {
	data, err := os.ReadFile(sidecarPath(pdfPath))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
