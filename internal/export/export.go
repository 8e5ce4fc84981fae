// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export lays parsed records out as a table and writes it as CSV,
// XLSX, JSON, or YAML. It also reads converted tables back for the later
// pipeline stages.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-integration/internal/bibtex"
)

// Format selects the table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported format or file extension.
var ErrUnknownFormat = errors.New("unknown export format")

// utf8BOM lets spreadsheet tools detect UTF-8 in CSV output.
const utf8BOM = "\ufeff"

const (
	recordsSheet  = "Records"
	coverageSheet = "Coverage"
)

// ParseFormat maps a flag value or file extension (with or without the
// dot) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Table is a sequence of records with the column order computed over all
// of them.
type Table struct {
	Schema  []string
	Records []bibtex.Record
}

// NewTable computes the schema for records.
func NewTable(records []bibtex.Record) Table {
	return Table{Schema: bibtex.Schema(records), Records: records}
}

// Rows returns the header followed by one row per record. Absent fields
// are filled with missing.
func (t Table) Rows(missing string) [][]string {
	rows := make([][]string, 0, len(t.Records)+1)
	header := make([]string, len(t.Schema))
	copy(header, t.Schema)
	rows = append(rows, header)
	for _, r := range t.Records {
		row := make([]string, len(t.Schema))
		for i, col := range t.Schema {
			if v, ok := r.Get(col); ok {
				row[i] = v
			} else {
				row[i] = missing
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Write encodes t to w in the given format.
func Write(w io.Writer, t Table, format Format, missing string) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, t, missing)
	case FormatXLSX:
		return writeXLSX(w, t, missing)
	case FormatJSON:
		return writeJSON(w, t)
	case FormatYAML:
		return writeYAML(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes t to path. An empty format is taken from the file
// extension. The file is written to a temporary name and renamed on
// success so a failed export never leaves a partial table behind.
func WriteFile(path string, t Table, format Format, missing string) error {
	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := Write(tmp, t, format, missing)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", format, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// OutputName returns "<prefix>_converted_YYYYMMDD_HHMMSS.<ext>".
func OutputName(prefix string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_converted_%s.%s", prefix, now.Format("20060102_150405"), format)
}

func writeCSV(w io.Writer, t Table, missing string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Rows(missing)); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, t Table, missing string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return err
	}
	for i, row := range t.Rows(missing) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(coverageSheet); err != nil {
		return err
	}
	header := []string{"column", "present", "total"}
	if err := f.SetSheetRow(coverageSheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range Coverage(t) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{c.Column, c.Present, c.Total}
		if err := f.SetSheetRow(coverageSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeJSON(w io.Writer, t Table) error {
	enc := jsonEncoder(w)
	records := t.Records
	if records == nil {
		records = []bibtex.Record{}
	}
	return enc.Encode(records)
}

func writeYAML(w io.Writer, t Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range t.Records {
		doc.Content = append(doc.Content, recordNode(r))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// recordNode builds a YAML mapping that keeps the record's field order.
func recordNode(r bibtex.Record) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.Fields() {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return n
}

// ColumnCoverage counts how many records carry a priority column.
type ColumnCoverage struct {
	Column  string `json:"column" yaml:"column"`
	Present int    `json:"present" yaml:"present"`
	Total   int    `json:"total" yaml:"total"`
}

// Coverage reports, for each priority column in the schema, how many
// records have a value.
func Coverage(t Table) []ColumnCoverage {
	inSchema := make(map[string]bool, len(t.Schema))
	for _, col := range t.Schema {
		inSchema[col] = true
	}
	var out []ColumnCoverage
	for _, col := range bibtex.PriorityFields {
		if !inSchema[col] {
			continue
		}
		c := ColumnCoverage{Column: col, Total: len(t.Records)}
		for _, r := range t.Records {
			if r.Has(col) {
				c.Present++
			}
		}
		out = append(out, c)
	}
	return out
}

// WriteCoverage prints Coverage as "column: present of total" lines.
func WriteCoverage(w io.Writer, t Table) {
	for _, c := range Coverage(t) {
		fmt.Fprintf(w, "%s: %d of %d\n", c.Column, c.Present, c.Total)
	}
}
