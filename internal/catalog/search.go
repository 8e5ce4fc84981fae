// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the full-text search string.
	Query string

	// Year filters by exact year.
	Year string

	// DocumentType filters by entry type, case-insensitively.
	DocumentType string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one stored record.
type Entry struct {
	CiteKey      string `json:"cite_key" yaml:"cite_key"`
	DocumentType string `json:"document_type,omitempty" yaml:"document_type,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Author       string `json:"author,omitempty" yaml:"author,omitempty"`
	Year         string `json:"year,omitempty" yaml:"year,omitempty"`
	DOI          string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL          string `json:"url,omitempty" yaml:"url,omitempty"`

	// Fields holds every field of the record, including the ones above.
	Fields map[string]string `json:"fields" yaml:"fields"`

	ImportID string `json:"import_id" yaml:"import_id"`
}

// Search queries the catalog. Full-text results are ranked by relevance;
// filter-only results are sorted by year, then cite key.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	switch {
	case opts.Query != "" && s.fts:
		qb.WriteString(
			`SELECT e.cite_key, e.document_type, e.title, e.author, e.year, e.doi, e.url, e.fields, e.import_id
			FROM entries_fts
			JOIN entries e ON e.rowid = entries_fts.rowid
			WHERE entries_fts MATCH ?`)
		args = append(args, opts.Query)
	case opts.Query != "":
		qb.WriteString(
			`SELECT e.cite_key, e.document_type, e.title, e.author, e.year, e.doi, e.url, e.fields, e.import_id
			FROM entries e
			WHERE (e.title LIKE ? OR e.abstract LIKE ? OR e.keywords LIKE ?)`)
		like := "%" + opts.Query + "%"
		args = append(args, like, like, like)
	default:
		qb.WriteString(
			`SELECT e.cite_key, e.document_type, e.title, e.author, e.year, e.doi, e.url, e.fields, e.import_id
			FROM entries e
			WHERE 1=1`)
	}

	if opts.Year != "" {
		qb.WriteString(` AND e.year = ?`)
		args = append(args, opts.Year)
	}
	if opts.DocumentType != "" {
		qb.WriteString(` AND lower(e.document_type) = lower(?)`)
		args = append(args, opts.DocumentType)
	}

	if opts.Query != "" && s.fts {
		qb.WriteString(` ORDER BY entries_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY e.year, e.cite_key`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			e                                 Entry
			docType, title, author, year, doi sql.NullString
			url, importID                     sql.NullString
			fields                            string
		)
		if err := rows.Scan(&e.CiteKey, &docType, &title, &author, &year, &doi, &url, &fields, &importID); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.DocumentType = docType.String
		e.Title = title.String
		e.Author = author.String
		e.Year = year.String
		e.DOI = doi.String
		e.URL = url.String
		e.ImportID = importID.String
		if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
			return nil, fmt.Errorf("decoding fields of %s: %w", e.CiteKey, err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
