// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperFromRow(t *testing.T) {
	row := map[string]string{
		"cite_key": "smith2020",
		"title":    " Deep Nets ",
		"year":     "2020",
		"doi":      "N/A",
		"url":      "https://example.org/p",
		"journal":  "J",
	}
	got := PaperFromRow(row, "N/A")
	assert.Equal(t, Paper{
		CiteKey: "smith2020",
		Title:   "Deep Nets",
		Year:    "2020",
		URL:     "https://example.org/p",
	}, got)
}

func TestPaperFromRowEmptyMarker(t *testing.T) {
	got := PaperFromRow(map[string]string{"title": "T", "source": "acm"}, "")
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "acm", got.Source)
	assert.Empty(t, got.DOI)
}

func TestPapersFromRows(t *testing.T) {
	got := PapersFromRows([]map[string]string{{"title": "A"}, {"title": "B"}}, "")
	assert.Len(t, got, 2)
	assert.Equal(t, "B", got[1].Title)
	assert.Empty(t, PapersFromRows(nil, ""))
}
