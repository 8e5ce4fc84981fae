// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "xyz", 0},
		{"abcd", "bcde", 0.75},
		{"abc", "", 0},
		// Longest block "ab", then "d" to its right: M=3, T=7.
		{"abxd", "abd", 6.0 / 7.0},
		{"Müller", "Muller", 10.0 / 12.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestLongestBlockPrefersEarliest(t *testing.T) {
	a, b := []rune("abab"), []rune("ab")
	i, j, k := longestBlock(a, b, 0, len(a), 0, len(b))
	assert.Equal(t, []int{0, 0, 2}, []int{i, j, k})
}

func TestFoldTitle(t *testing.T) {
	assert.Equal(t, "uber graphen und netze", foldTitle("  Über   Graphen und\tNETZE "))
}

func TestBestMatch(t *testing.T) {
	candidates := []string{
		"A Survey of Graph Databases",
		"Deep Learning for Bibliographies",
		"Attention Is All You Need",
	}

	i, score := BestMatch("DEEP LEARNING FOR BIBLIOGRAPHIES", candidates, 0.5)
	assert.Equal(t, 1, i)
	assert.InDelta(t, 1.0, score, 1e-9)

	i, _ = BestMatch("Deep Learning for Bibliography Parsing", candidates, 0.5)
	assert.Equal(t, 1, i)

	i, score = BestMatch("Quantum chromodynamics on lattices", candidates, 0.9)
	assert.Equal(t, -1, i)
	assert.Zero(t, score)
}

func TestBestMatchTiesGoToEarlierCandidate(t *testing.T) {
	i, _ := BestMatch("abc", []string{"abc", "ABC"}, 0.5)
	assert.Equal(t, 0, i)
}
