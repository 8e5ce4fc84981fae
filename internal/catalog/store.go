// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps converted bibliography records in a SQLite
// database with a full-text index over titles, abstracts and keywords.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-integration/internal/bibtex"
)

const (
	indexDir = "index"
	dbFile   = "catalog.db"

	defaultMaxResults = 20
)

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int

	// fts is false when the SQLite build lacks FTS5; Search then falls
	// back to LIKE matching.
	fts bool
}

// Open opens or creates the catalog at outputDir/index/catalog.db and
// creates the schema if it does not exist.
func Open(outputDir string) (*Store, error) {
	dir := filepath.Join(outputDir, indexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, maxResults: defaultMaxResults}
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

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string {
	return s.dir
}

// FullText reports whether Search uses the FTS5 index.
func (s *Store) FullText() bool {
	return s.fts
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			cite_key TEXT NOT NULL UNIQUE,
			document_type TEXT,
			title TEXT,
			author TEXT,
			year TEXT,
			doi TEXT,
			url TEXT,
			abstract TEXT,
			keywords TEXT,
			fields TEXT NOT NULL,
			import_id TEXT REFERENCES imports(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_year ON entries(year)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(document_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='entries_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE entries_fts USING fts5(title, abstract, keywords, content=entries, content_rowid=rowid)`,
		`CREATE TRIGGER entries_ai AFTER INSERT ON entries BEGIN
			INSERT INTO entries_fts(rowid, title, abstract, keywords)
			VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
		`CREATE TRIGGER entries_ad AFTER DELETE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, title, abstract, keywords)
			VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
		END`,
		`CREATE TRIGGER entries_au AFTER UPDATE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, title, abstract, keywords)
			VALUES ('delete', old.rowid, old.title, old.abstract, old.keywords);
			INSERT INTO entries_fts(rowid, title, abstract, keywords)
			VALUES (new.rowid, new.title, new.abstract, new.keywords);
		END`,
	}
	if _, err := s.db.Exec(ftsStatements[0]); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range ftsStatements[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	s.fts = true
	return nil
}

// ImportSummary holds counts from one Import call.
type ImportSummary struct {
	ID       string
	Source   string
	Inserted int
	Updated  int
	Skipped  int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Inserted + s.Updated + s.Skipped
}

// Import upserts records keyed by cite key under a new import batch.
// Records without a cite key cannot be addressed and are skipped.
func (s *Store) Import(ctx context.Context, source string, records []bibtex.Record) (ImportSummary, error) {
	summary := ImportSummary{ID: uuid.NewString(), Source: source}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, count) VALUES (?, ?, ?, 0)`,
		summary.ID, source, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return summary, fmt.Errorf("recording import: %w", err)
	}

	exists, err := tx.PrepareContext(ctx, `SELECT count(*) FROM entries WHERE cite_key = ?`)
	if err != nil {
		return summary, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (cite_key, document_type, title, author, year, doi, url, abstract, keywords, fields, import_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cite_key) DO UPDATE SET
			document_type=excluded.document_type, title=excluded.title,
			author=excluded.author, year=excluded.year, doi=excluded.doi,
			url=excluded.url, abstract=excluded.abstract,
			keywords=excluded.keywords, fields=excluded.fields,
			import_id=excluded.import_id`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for _, r := range records {
		key := r.CiteKey()
		if key == "" {
			summary.Skipped++
			continue
		}

		var n int
		if err := exists.QueryRowContext(ctx, key).Scan(&n); err != nil {
			return summary, fmt.Errorf("looking up %s: %w", key, err)
		}

		fields, err := json.Marshal(r)
		if err != nil {
			return summary, fmt.Errorf("encoding %s: %w", key, err)
		}
		get := func(name string) string {
			v, _ := r.Get(name)
			return v
		}
		if _, err := upsert.ExecContext(ctx,
			key, get(bibtex.FieldDocumentType), get("title"), get("author"),
			get("year"), get("doi"), get("url"), get("abstract"), get("keywords"),
			string(fields), summary.ID,
		); err != nil {
			return summary, fmt.Errorf("storing %s: %w", key, err)
		}

		if n > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET count = ? WHERE id = ?`,
		summary.Inserted+summary.Updated, summary.ID,
	); err != nil {
		return summary, fmt.Errorf("updating import count: %w", err)
	}

	return summary, tx.Commit()
}

// ImportRecord describes one past import batch.
type ImportRecord struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	ImportedAt time.Time `json:"imported_at" yaml:"imported_at"`
	Count      int       `json:"count" yaml:"count"`
}

// Imports lists import batches, newest first.
func (s *Store) Imports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, imported_at, count FROM imports ORDER BY imported_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var (
			rec ImportRecord
			at  string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &at, &rec.Count); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		rec.ImportedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}
