// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNoMarkers(t *testing.T) {
	for _, corpus := range []string{
		"",
		"just some text",
		"mail me at john@example.com",
		"@ article{key, title={x}}",
		"@{key}",
	} {
		assert.Empty(t, Split(corpus), "corpus %q", corpus)
	}
}

func TestSplitEntries(t *testing.T) {
	corpus := "preamble text\n@Article{key1, title={A}}\n@misc {k2,\n note = x}\n"

	entries := Split(corpus)
	require.Len(t, entries, 2)

	assert.Equal(t, "article", entries[0].Type)
	assert.Equal(t, "key1", entries[0].CiteKey)
	assert.Equal(t, "key1, title={A}}\n", entries[0].Body)

	assert.Equal(t, "misc", entries[1].Type)
	assert.Equal(t, "k2", entries[1].CiteKey)
	assert.Equal(t, "k2,\n note = x}\n", entries[1].Body)
}

func TestSplitIsNotBraceBalanced(t *testing.T) {
	entries := Split("@misc{a, note = {see @inbook{x} here}}")
	require.Len(t, entries, 2)
	assert.Equal(t, "misc", entries[0].Type)
	assert.Equal(t, "a, note = {see ", entries[0].Body)
	assert.Equal(t, "inbook", entries[1].Type)
}

func TestSplitCiteKeyWithoutComma(t *testing.T) {
	entries := Split("@misc{  lonely  ")
	require.Len(t, entries, 1)
	assert.Equal(t, "lonely", entries[0].CiteKey)
}

func TestStripComments(t *testing.T) {
	in := "% header comment\n@article{k, % trailing\n year = 2020}\n"
	assert.Equal(t, "\n@article{k, \n year = 2020}\n", StripComments(in))
}

func TestSplitCommentTruncatesValue(t *testing.T) {
	entries := Split("@article{k, url = {http://x.org/a%20b}}\n")
	require.Len(t, entries, 1)

	url, ok := ExtractField(entries[0].Body, "url")
	require.True(t, ok)
	assert.Equal(t, "http://x.org/a", url)
}

func TestSplitCommentedOutEntry(t *testing.T) {
	entries := Split("%@article{hidden, title={x}}\n@book{shown, title={y}}")
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0].CiteKey)
}
