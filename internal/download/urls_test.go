// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-integration/pkg/types"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10.1145/1234.5678", "10.1145/1234.5678"},
		{"  10.1/x ", "10.1/x"},
		{"https://doi.org/10.1/x", "10.1/x"},
		{"HTTP://DX.DOI.ORG/10.1/X", "10.1/X"},
		{"doi:10.1/x", "10.1/x"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDOI(tt.in), tt.in)
	}
}

func TestPaperURLPrefersDOI(t *testing.T) {
	u, err := PaperURL(types.Paper{DOI: "10.1/x", URL: "https://example.com/p"})
	require.NoError(t, err)
	assert.Equal(t, "https://doi.org/10.1/x", u)

	u, err = PaperURL(types.Paper{URL: "https://example.com/p"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p", u)

	_, err = PaperURL(types.Paper{Title: "nothing"})
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestPreferredURLPrefersURL(t *testing.T) {
	u, err := PreferredURL(types.Paper{DOI: "10.1/x", URL: "https://example.com/p"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p", u)

	u, err = PreferredURL(types.Paper{DOI: "10.1/x"})
	require.NoError(t, err)
	assert.Equal(t, "https://doi.org/10.1/x", u)

	_, err = PreferredURL(types.Paper{})
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestURLMap(t *testing.T) {
	m := URLMap([]types.Paper{
		{Title: "A", URL: "https://a.org"},
		{Title: "B", DOI: "10.2/b"},
		{Title: "C"},
	})
	assert.Equal(t, map[string]string{
		"A": "https://a.org",
		"B": "https://doi.org/10.2/b",
		"C": "",
	}, m)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name        string
		year, title string
		want        string
	}{
		{"plain", "2020", "Deep Learning", "2020_Deep_Learning.pdf"},
		{"punctuation dropped", "2019", "What's new? A: survey!", "2019_Whats_new_A_survey.pdf"},
		{"hyphen kept", "2021", "Self-Supervised  Models", "2021_Self-Supervised_Models.pdf"},
		{"unicode letters kept", "2018", "Über Graphen", "2018_Über_Graphen.pdf"},
		{"missing year", "", "T", "unknown_T.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.year, tt.title))
		})
	}
}

func TestFileNameTruncatesTitle(t *testing.T) {
	got := FileName("2020", strings.Repeat("é", 150))
	assert.Equal(t, "2020_"+strings.Repeat("é", 100)+".pdf", got)
}

func TestURLListName(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "paper_urls_20240102_030405.md", URLListName(now))
}

func TestWriteURLList(t *testing.T) {
	papers := []types.Paper{
		{Title: "Real DOI", Year: "2020", Source: "acm", DOI: "10.1145/1"},
		{Title: "Test DOI", Year: "2021", Source: "acm", DOI: "10.5555/2"},
		{Title: "Only URL", Year: "2022", Source: "ieee", URL: "https://ex.org/p"},
		{Title: "Nothing", Year: "2023"},
	}

	var buf bytes.Buffer
	n, err := WriteURLList(&buf, papers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := "# Paper URL list\n\n" +
		"## Real DOI (2020)\n- Source: acm\n- URL: https://doi.org/10.1145/1\n\n" +
		"## Test DOI (2021)\n- Source: acm\n- DOI: 10.5555/2\n\n" +
		"## Only URL (2022)\n- Source: ieee\n- URL: https://ex.org/p\n\n"
	assert.Equal(t, want, buf.String())
}
