// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"regexp"
	"strings"
)

// accentPair maps one escape-accent sequence to its precomposed character.
type accentPair struct {
	pattern     string
	replacement string
}

// accentSource lists the escape-accent sequences in declaration order.
// Some patterns are declared twice; buildAccentTable resolves them.
var accentSource = []accentPair{
	{`\"a`, "ä"}, {`\"o`, "ö"}, {`\"u`, "ü"},
	{`\'a`, "á"}, {`\'e`, "é"}, {`\'i`, "í"},
	{`\'o`, "ó"}, {`\'u`, "ú"}, {`\ss`, "ß"},
	{`\ae`, "æ"}, {`\o`, "ø"}, {`\aa`, "å"},
	{`\"{o}`, "ö"}, {`\"{u}`, "ü"}, {`\"{a}`, "ä"},
	{`\'{e}`, "é"}, {`\'{i}`, "í"}, {`\'{o}`, "ó"},
	{`\'{u}`, "ú"}, {`\'{a}`, "á"},
	{`\"o`, "ö"}, {`\"u`, "ü"}, {`\"a`, "ä"},
	{`\"O`, "Ö"}, {`\"U`, "Ü"}, {`\"A`, "Ä"},
}

// accentTable is applied in order by Normalize.
var accentTable = buildAccentTable(accentSource)

// buildAccentTable collapses duplicate patterns. A repeated pattern keeps
// the slot of its first declaration and the replacement of its last one,
// so later declarations override earlier ones without reordering the table.
func buildAccentTable(pairs []accentPair) []accentPair {
	slot := make(map[string]int, len(pairs))
	table := make([]accentPair, 0, len(pairs))
	for _, p := range pairs {
		if i, ok := slot[p.pattern]; ok {
			table[i].replacement = p.replacement
			continue
		}
		slot[p.pattern] = len(table)
		table = append(table, p)
	}
	return table
}

var (
	// commandArgRe matches a command with a braced argument: \emph{text}.
	commandArgRe = regexp.MustCompile(`\\[a-zA-Z]+\{([^}]*)\}`)

	// bareCommandRe matches a command without an argument: \relax.
	bareCommandRe = regexp.MustCompile(`\\[a-zA-Z]+`)

	braceStripper = strings.NewReplacer("{", "", "}", "")
)

// Normalize cleans a raw field value: it removes the outer delimiter pair,
// decodes escape-accent sequences, unwraps or drops markup commands and
// removes leftover braces. It reports false when nothing is left.
//
// Command unwrapping is a single pass: in \textbf{\emph{x}} the outer
// command is unwrapped and \emph survives only to be dropped as a bare
// command.
func Normalize(raw string) (string, bool) {
	v := stripDelimiters(raw)

	for _, p := range accentTable {
		v = strings.ReplaceAll(v, p.pattern, p.replacement)
	}

	v = commandArgRe.ReplaceAllString(v, "${1}")
	v = bareCommandRe.ReplaceAllString(v, "")
	v = braceStripper.Replace(v)

	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// stripDelimiters removes at most one opening brace or quote and at most
// one closing brace or quote, then trailing commas and surrounding space.
func stripDelimiters(raw string) string {
	v := strings.TrimSpace(raw)
	if v != "" && (v[0] == '{' || v[0] == '"') {
		v = v[1:]
	}
	if n := len(v); n > 0 && (v[n-1] == '}' || v[n-1] == '"') {
		v = v[:n-1]
	}
	v = strings.TrimRight(v, ",")
	return strings.TrimSpace(v)
}
