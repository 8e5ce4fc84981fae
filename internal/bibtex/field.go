// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import "strings"

// ExtractField finds the first "name = value" pair in body (name matched
// case-insensitively) and returns the normalized value. It reports false
// when the field is missing or normalizes to nothing.
func ExtractField(body, name string) (string, bool) {
	raw, ok := extractRaw(body, name)
	if !ok {
		return "", false
	}
	return Normalize(raw)
}

// extractRaw returns the raw value of the first occurrence of name followed
// by '='. Only the first occurrence is considered, even when its value is
// empty. The name may be the tail of a longer identifier: "title" matches
// inside "booktitle" when that comes first.
func extractRaw(body, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for i := 0; i+len(name) <= len(body); i++ {
		if !hasPrefixFold(body[i:], name) {
			continue
		}
		j := skipSpace(body, i+len(name))
		if j >= len(body) || body[j] != '=' {
			continue
		}
		raw, _ := scanValue(body, skipSpace(body, j+1))
		return raw, true
	}
	return "", false
}

// fieldMatch is one key/value pair found by scanFields.
type fieldMatch struct {
	name string
	raw  string
}

// scanFields walks body left to right and returns every "ident = value"
// pair. Values are consumed whole, so pairs inside a braced or quoted value
// are not reported.
func scanFields(body string) []fieldMatch {
	var out []fieldMatch
	for i := 0; i < len(body); {
		end := scanIdent(body, i)
		if end == i {
			i++
			continue
		}
		j := skipSpace(body, end)
		if j >= len(body) || body[j] != '=' {
			i = end
			continue
		}
		raw, next := scanValue(body, skipSpace(body, j+1))
		out = append(out, fieldMatch{name: body[i:end], raw: raw})
		if next < len(body) && body[next] == ',' {
			next++
		}
		i = next
	}
	return out
}

// scanValue reads a value starting at i and returns its raw text and the
// offset just past it. The braced and quoted forms return the text inside
// the delimiters. The forms are tried in order: braced, quoted, bare.
func scanValue(s string, i int) (string, int) {
	if i < len(s) && s[i] == '{' {
		if end, ok := scanBraced(s, i); ok {
			return s[i+1 : end-1], end
		}
	}
	if i < len(s) && s[i] == '"' {
		if k := strings.IndexByte(s[i+1:], '"'); k >= 0 {
			end := i + 1 + k + 1
			return s[i+1 : end-1], end
		}
	}
	end := scanBare(s, i)
	return s[i:end], end
}

// scanBraced matches a braced value whose content may hold whole {...}
// groups one level deep. A brace opened inside such a group fails the
// match. It returns the offset past the closing brace.
func scanBraced(s string, i int) (int, bool) {
	depth := 0
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '{':
			if depth == 1 {
				return 0, false
			}
			depth = 1
		case '}':
			if depth == 0 {
				return j + 1, true
			}
			depth = 0
		}
	}
	return 0, false
}

// scanBare runs to the next comma, or to a '}' that is not immediately
// followed by a comma. The end of s terminates the value too.
func scanBare(s string, i int) int {
	for j := i; j < len(s); j++ {
		switch s[j] {
		case ',':
			return j
		case '}':
			if j+1 >= len(s) || s[j+1] != ',' {
				return j
			}
		}
	}
	return len(s)
}

// hasPrefixFold reports whether s starts with the ASCII string prefix,
// ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for k := 0; k < len(prefix); k++ {
		a, b := s[k], prefix[k]
		if a == b {
			continue
		}
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
