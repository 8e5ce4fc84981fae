// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc
}

// ReadFile reads a converted table (CSV, XLSX or JSON) into header-keyed
// rows. Short rows are padded with empty strings.
func ReadFile(path string) ([]map[string]string, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening table: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case FormatXLSX:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f)
	case FormatJSON:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading table: %w", err)
		}
		var rows []map[string]string
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parsing JSON table: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: cannot read %s tables", ErrUnknownFormat, format)
	}
}

// ReadCSV reads CSV rows keyed by the header line. A leading UTF-8 BOM is
// ignored.
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return keyRows(records), nil
}

func readWorkbook(f *excelize.File) ([]map[string]string, error) {
	sheet := recordsSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return keyRows(rows), nil
}

// keyRows turns a header row plus data rows into maps.
func keyRows(rows [][]string) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			} else {
				m[col] = ""
			}
		}
		out = append(out, m)
	}
	return out
}

// Latest returns the newest table in dir whose name matches one of the
// glob patterns. Names embed a sortable timestamp, so the lexically
// greatest match is the newest.
func Latest(dir string, patterns ...string) (string, error) {
	var matches []string
	for _, p := range patterns {
		m, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return "", fmt.Errorf("bad pattern %q: %w", p, err)
		}
		matches = append(matches, m...)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no table matching %v in %s", patterns, dir)
	}
	sort.Slice(matches, func(i, j int) bool {
		return filepath.Base(matches[i]) < filepath.Base(matches[j])
	})
	return matches[len(matches)-1], nil
}
