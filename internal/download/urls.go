// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paper-integration/pkg/types"
)

// ErrNoURL is returned for a paper with neither DOI nor URL.
var ErrNoURL = errors.New("no DOI or URL")

const doiResolver = "https://doi.org/"

// testDOIPrefix marks ACM's placeholder DOIs, which do not resolve.
const testDOIPrefix = "10.5555"

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI strips resolver prefixes so "https://doi.org/10.1/x" and
// "10.1/x" compare equal.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(doi[len(p):])
		}
	}
	return doi
}

// PaperURL returns the download URL for p: the DOI resolver link when a
// DOI is present, otherwise the entry URL.
func PaperURL(p types.Paper) (string, error) {
	if doi := NormalizeDOI(p.DOI); doi != "" {
		return doiResolver + doi, nil
	}
	if p.URL != "" {
		return p.URL, nil
	}
	return "", ErrNoURL
}

// PreferredURL returns the entry URL when present, otherwise the DOI
// resolver link. This is the order used for the title to URL map.
func PreferredURL(p types.Paper) (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if doi := NormalizeDOI(p.DOI); doi != "" {
		return doiResolver + doi, nil
	}
	return "", ErrNoURL
}

// URLMap maps each title to its PreferredURL. Papers without one map to
// the empty string.
func URLMap(papers []types.Paper) map[string]string {
	m := make(map[string]string, len(papers))
	for _, p := range papers {
		u, _ := PreferredURL(p)
		m[p.Title] = u
	}
	return m
}

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s-]`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
)

const maxTitleRunes = 100

// FileName returns "<year>_<clean title>.pdf". The title keeps letters,
// digits, underscores and hyphens; whitespace runs become one underscore
// and the result is cut to 100 runes.
func FileName(year, title string) string {
	clean := nonWordRe.ReplaceAllString(title, "")
	clean = whitespaceRe.ReplaceAllString(clean, "_")
	if r := []rune(clean); len(r) > maxTitleRunes {
		clean = string(r[:maxTitleRunes])
	}
	if year == "" {
		year = "unknown"
	}
	return year + "_" + clean + ".pdf"
}

// URLListName returns "paper_urls_YYYYMMDD_HHMMSS.md".
func URLListName(now time.Time) string {
	return "paper_urls_" + now.Format("20060102_150405") + ".md"
}

// WriteURLList writes a Markdown list with one section per paper that has
// a DOI or URL. Placeholder DOIs are listed as-is since they do not
// resolve. It returns the number of papers listed.
func WriteURLList(w io.Writer, papers []types.Paper) (int, error) {
	if _, err := fmt.Fprint(w, "# Paper URL list\n\n"); err != nil {
		return 0, err
	}

	n := 0
	for _, p := range papers {
		doi := NormalizeDOI(p.DOI)
		if doi == "" && p.URL == "" {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "## %s (%s)\n", p.Title, p.Year)
		fmt.Fprintf(&b, "- Source: %s\n", p.Source)
		switch {
		case strings.HasPrefix(doi, testDOIPrefix):
			fmt.Fprintf(&b, "- DOI: %s\n", doi)
		case doi != "":
			fmt.Fprintf(&b, "- URL: %s%s\n", doiResolver, doi)
		default:
			fmt.Fprintf(&b, "- URL: %s\n", p.URL)
		}
		b.WriteString("\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
