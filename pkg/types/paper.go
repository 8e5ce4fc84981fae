// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-integration
// pipeline: stage configuration and the Paper view of a table row.
package types

import "strings"

// Column names read from converted tables.
const (
	ColumnCiteKey = "cite_key"
	ColumnTitle   = "title"
	ColumnAuthor  = "author"
	ColumnYear    = "year"
	ColumnDOI     = "doi"
	ColumnURL     = "url"
	ColumnSource  = "source"
)

// Paper is the subset of a converted table row that the download, rename
// and chart stages work with. Missing columns are empty strings.
type Paper struct {
	// CiteKey is the entry's cite key.
	CiteKey string `json:"cite_key" yaml:"cite_key"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Author is the raw author list as exported.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Year is the publication year as exported (not validated).
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the bare DOI, e.g. "10.1145/1234567.1234568".
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is the paper URL from the bibliography entry.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source names where the row came from (e.g. "acm"); optional.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PaperFromRow builds a Paper from a header-keyed table row. Values equal
// to missing are treated as absent.
func PaperFromRow(row map[string]string, missing string) Paper {
	get := func(col string) string {
		v := strings.TrimSpace(row[col])
		if v == missing {
			return ""
		}
		return v
	}
	return Paper{
		CiteKey: get(ColumnCiteKey),
		Title:   get(ColumnTitle),
		Author:  get(ColumnAuthor),
		Year:    get(ColumnYear),
		DOI:     get(ColumnDOI),
		URL:     get(ColumnURL),
		Source:  get(ColumnSource),
	}
}

// PapersFromRows converts every row with PaperFromRow.
func PapersFromRows(rows []map[string]string, missing string) []Paper {
	papers := make([]Paper, len(rows))
	for i, row := range rows {
		papers[i] = PaperFromRow(row, missing)
	}
	return papers
}
