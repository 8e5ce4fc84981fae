// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// RawEntry is one entry as cut out of the corpus, before field extraction.
type RawEntry struct {
	// Type is the lowercased identifier after '@' (e.g. "article").
	Type string

	// CiteKey is the trimmed text of Body before its first comma.
	CiteKey string

	// Body runs from just after the opening brace to the next entry marker
	// or the end of the corpus. It is not brace balanced.
	Body string
}

// StripComments removes everything from '%' to the end of each line.
// It does not know about quoting, so a '%' inside a value (a URL, say)
// truncates that line.
func StripComments(corpus string) string {
	if !strings.Contains(corpus, "%") {
		return corpus
	}
	lines := strings.Split(corpus, "\n")
	for i, line := range lines {
		if j := strings.IndexByte(line, '%'); j >= 0 {
			lines[i] = line[:j]
		}
	}
	return strings.Join(lines, "\n")
}

// Split cuts a corpus into raw entries. Each "@ident{" marker opens an
// entry that ends where the next marker starts. Text before the first
// marker is dropped and a corpus without markers yields no entries.
//
// Entry boundaries come from markers only, so a value containing an
// "@word{" sequence starts a spurious entry at that point.
func Split(corpus string) []RawEntry {
	corpus = StripComments(corpus)

	type marker struct {
		start, bodyStart int
		typ              string
	}
	var markers []marker
	for i := 0; i < len(corpus); {
		j := strings.IndexByte(corpus[i:], '@')
		if j < 0 {
			break
		}
		at := i + j
		if typ, bodyStart, ok := matchMarker(corpus, at); ok {
			markers = append(markers, marker{start: at, bodyStart: bodyStart, typ: typ})
			i = bodyStart
			continue
		}
		i = at + 1
	}

	entries := make([]RawEntry, 0, len(markers))
	for k, m := range markers {
		end := len(corpus)
		if k+1 < len(markers) {
			end = markers[k+1].start
		}
		body := corpus[m.bodyStart:end]
		entries = append(entries, RawEntry{
			Type:    strings.ToLower(m.typ),
			CiteKey: citeKey(body),
			Body:    body,
		})
	}
	return entries
}

// matchMarker checks for "@ident<space>*{" at position at. It returns the
// identifier and the offset just past the brace.
func matchMarker(s string, at int) (string, int, bool) {
	i := at + 1
	identEnd := scanIdent(s, i)
	if identEnd == i {
		return "", 0, false
	}
	j := skipSpace(s, identEnd)
	if j >= len(s) || s[j] != '{' {
		return "", 0, false
	}
	return s[i:identEnd], j + 1, true
}

func citeKey(body string) string {
	if i := strings.IndexByte(body, ','); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

// isIdentRune reports whether r may appear in an entry type or field name.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanIdent returns the end offset of the identifier starting at i, or i
// when there is none.
func scanIdent(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isIdentRune(r) {
			break
		}
		i += size
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}
