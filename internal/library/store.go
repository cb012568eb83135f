// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps a SQLite record of every paper downloaded into
// the download directory, so earlier sessions can be listed and searched.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/internal/acquire"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultLimit = 50

// Entry is one downloaded paper as stored in the library.
type Entry struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Authors      []string  `json:"authors" yaml:"authors"`
	Published    time.Time `json:"published" yaml:"published"`
	Abstract     string    `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	PDFPath      string    `json:"pdf_path" yaml:"pdf_path"`
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}

// Store manages the library database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the library database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.LibraryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("library path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			published TEXT,
			abstract TEXT,
			pdf_path TEXT NOT NULL,
			downloaded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_downloaded_at ON papers(downloaded_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts paper with the local PDF path. Recording the same paper
// twice refreshes its metadata and download time.
func (s *Store) Record(ctx context.Context, paper *types.Paper, pdfPath string) error {
	return s.record(ctx, paper, pdfPath, s.now().UTC())
}

func (s *Store) record(ctx context.Context, paper *types.Paper, pdfPath string, at time.Time) error {
	authorsJSON, err := json.Marshal(paper.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}
	published := ""
	if !paper.Published.IsZero() {
		published = paper.Published.UTC().Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, authors, published, abstract, pdf_path, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, published=excluded.published,
			abstract=excluded.abstract, pdf_path=excluded.pdf_path,
			downloaded_at=excluded.downloaded_at`,
		paper.ID, paper.Title, string(authorsJSON), published,
		paper.Abstract, pdfPath, at.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording paper %s: %w", paper.ID, err)
	}
	return nil
}

// Get returns the entry for id, or a not-found error.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntries+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying paper %s: %w", id, err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, types.NewError(types.KindNotFound, "library get",
			fmt.Errorf("paper %s is not in the library", id))
	}
	return &entries[0], nil
}

// List returns up to limit entries, most recently downloaded first. A
// non-positive limit uses the default of 50.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		selectEntries+` ORDER BY downloaded_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing library: %w", err)
	}
	return scanEntries(rows)
}

// Search returns entries whose title, abstract, or authors contain term,
// ignoring case.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, types.NewError(types.KindNotFound, "library search", errors.New("empty search term"))
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	rows, err := s.db.QueryContext(ctx,
		selectEntries+` WHERE lower(title) LIKE ? ESCAPE '\'
			OR lower(abstract) LIKE ? ESCAPE '\'
			OR lower(authors) LIKE ? ESCAPE '\'
		 ORDER BY downloaded_at DESC, id LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching library: %w", err)
	}
	return scanEntries(rows)
}

// ImportSummary holds counts from an Import run.
type ImportSummary struct {
	Imported int
	Skipped  int
	Failed   int
}

// Import scans dir for downloaded PDFs and records those that have a
// metadata sidecar. PDFs without a readable sidecar are counted as
// skipped.
func (s *Store) Import(ctx context.Context, dir string) (ImportSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading download directory %s: %w", dir, err)
	}

	var summary ImportSummary
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		pdfPath := filepath.Join(dir, entry.Name())
		meta, err := acquire.ReadMetadata(pdfPath)
		if err != nil || meta.ID == "" {
			summary.Skipped++
			continue
		}

		at := meta.DownloadedAt
		if at.IsZero() {
			at = s.now().UTC()
		}
		if err := s.record(ctx, &meta.Paper, pdfPath, at); err != nil {
			summary.Failed++
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

const selectEntries = `SELECT id, title, authors, published, abstract, pdf_path, downloaded_at FROM papers`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                                Entry
			authors, published, downloadedAt string
			abstract                         sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &authors, &published, &abstract, &e.PDFPath, &downloadedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Abstract = abstract.String
		if authors != "" {
			_ = json.Unmarshal([]byte(authors), &e.Authors)
		}
		if published != "" {
			e.Published, _ = time.Parse(time.RFC3339, published)
		}
		e.DownloadedAt, _ = time.Parse(time.RFC3339Nano, downloadedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
