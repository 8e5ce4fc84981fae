// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-integration/internal/bibtex"
)

const sampleCorpus = `
@inproceedings{smith2020,
  title = {Deep {Learning} for Bibliographies},
  author = {Smith, Jane and M{\"u}ller, Hans},
  year = 2020,
  doi = {10.1145/1234.5678},
  series = {ICSE '20}
}
@article{doe2019,
  title = "A Study",
  year = {2019},
  journal = {Journal of Things}
}
`

func sampleTable() Table {
	return NewTable(bibtex.Parse(sampleCorpus))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{".CSV", FormatCSV},
		{"xlsx", FormatXLSX},
		{".json", FormatJSON},
		{"yml", FormatYAML},
		{".yaml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat(".txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTableRows(t *testing.T) {
	table := sampleTable()
	rows := table.Rows("N/A")

	require.Len(t, rows, 3)
	assert.Equal(t,
		[]string{"cite_key", "title", "author", "year", "journal", "doi", "document_type", "series"},
		rows[0])
	assert.Equal(t, "smith2020", rows[1][0])
	assert.Equal(t, "Deep Learning for Bibliographies", rows[1][1])
	assert.Equal(t, "Smith, Jane and Müller, Hans", rows[1][2])
	assert.Equal(t, "N/A", rows[1][4], "journal missing on first record")
	assert.Equal(t, "N/A", rows[2][2], "author missing on second record")
	assert.Equal(t, "article", rows[2][6])
}

func TestWriteCSVHasBOMAndRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatCSV, ""))
	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM))

	rows, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "smith2020", rows[0]["cite_key"])
	assert.Equal(t, "ICSE '20", rows[0]["series"])
	assert.Equal(t, "", rows[1]["series"])
	assert.Equal(t, "Journal of Things", rows[1]["journal"])
}

func TestWriteJSONKeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatJSON, ""))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"cite_key"`), strings.Index(out, `"title"`))
	assert.Less(t, strings.Index(out, `"title"`), strings.Index(out, `"author"`))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "10.1145/1234.5678", decoded[0]["doi"])
	_, hasJournal := decoded[0]["journal"]
	assert.False(t, hasJournal, "absent fields are omitted from JSON")
}

func TestWriteJSONEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewTable(nil), FormatJSON, ""))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatYAML, ""))

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "2020", decoded[0]["year"], "years stay strings")
	assert.Equal(t, "A Study", decoded[1]["title"])
	assert.True(t, strings.HasPrefix(buf.String(), "- cite_key: smith2020\n"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable(), FormatXLSX, "-"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{recordsSheet, coverageSheet}, f.GetSheetList())

	rows, err := readWorkbook(f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "doe2019", rows[1]["cite_key"])
	assert.Equal(t, "-", rows[1]["author"])

	cov, err := f.GetRows(coverageSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"column", "present", "total"}, cov[0])
	assert.Equal(t, []string{"title", "2", "2"}, cov[1])
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleTable(), Format("txt"), "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteFileAndReadFile(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{"csv", "xlsx", "json"} {
		path := filepath.Join(dir, "nested", "papers."+ext)
		require.NoError(t, WriteFile(path, sampleTable(), "", ""), ext)

		rows, err := ReadFile(path)
		require.NoError(t, err, ext)
		require.Len(t, rows, 2, ext)
		assert.Equal(t, "smith2020", rows[0]["cite_key"], ext)
		assert.Equal(t, "2019", rows[1]["year"], ext)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left: %s", e.Name())
	}
}

func TestWriteFileRejectsUnknownExtension(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "out.txt"), sampleTable(), "", "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadCSVPadsShortRows(t *testing.T) {
	in := utf8BOM + "cite_key,title,year\na,T\n"
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{"cite_key": "a", "title": "T", "year": ""}, rows[0])
}

func TestOutputName(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "acm_converted_20240305_140709.csv", OutputName("acm", FormatCSV, now))
	assert.Equal(t, "papers_converted_20240305_140709.xlsx", OutputName("papers", FormatXLSX, now))
}

func TestCoverage(t *testing.T) {
	cov := Coverage(sampleTable())

	byCol := make(map[string]ColumnCoverage)
	var order []string
	for _, c := range cov {
		byCol[c.Column] = c
		order = append(order, c.Column)
	}
	assert.Equal(t, []string{"title", "author", "year", "journal", "doi", "document_type"}, order)
	assert.Equal(t, 1, byCol["author"].Present)
	assert.Equal(t, 2, byCol["year"].Present)
	assert.Equal(t, 2, byCol["year"].Total)

	var buf bytes.Buffer
	WriteCoverage(&buf, sampleTable())
	assert.Contains(t, buf.String(), "doi: 1 of 2\n")
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"acm_converted_20240101_000000.csv",
		"acm_converted_20240301_120000.csv",
		"papers_20240201_000000.xlsx",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := Latest(dir, "*_converted_*", "papers_*")
	require.NoError(t, err)
	assert.Equal(t, "acm_converted_20240301_120000.csv", filepath.Base(got))

	_, err = Latest(t.TempDir(), "*_converted_*")
	assert.Error(t, err)
}
