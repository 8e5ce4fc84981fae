// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rename

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ratio returns the Ratcliff/Obershelp similarity of a and b: twice the
// number of matched runes divided by the total rune count. Identical
// strings score 1; two empty strings also score 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ra, rb)) / float64(total)
}

// matchedRunes finds the longest common block, then recurses on the
// pieces to its left and right.
func matchedRunes(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }
	matched := 0
	stack := []span{{0, len(a), 0, len(b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, k := longestBlock(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			stack = append(stack, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			stack = append(stack, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestBlock returns the longest common run a[i:i+k] == b[j:j+k] inside
// the given bounds. Ties go to the earliest i, then the earliest j.
func longestBlock(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	// prev[j+1] is the length of the run ending at a[i-1], b[j].
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			c := j - blo + 1
			if a[i] != b[j] {
				cur[c] = 0
				continue
			}
			cur[c] = prev[c-1] + 1
			if cur[c] > bestk {
				besti, bestj, bestk = i-cur[c]+1, j-cur[c]+1, cur[c]
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}

// foldTitle lowercases s, strips combining marks and collapses runs of
// whitespace so that case and accent differences do not lower a score.
func foldTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// BestMatch returns the index of the candidate most similar to title and
// its score. Titles are compared after case and accent folding. It
// returns -1 when no candidate reaches cutoff. Ties go to the earlier
// candidate.
func BestMatch(title string, candidates []string, cutoff float64) (int, float64) {
	best, bestScore := -1, 0.0
	ft := foldTitle(title)
	for i, c := range candidates {
		score := Ratio(ft, foldTitle(c))
		if score >= cutoff && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
