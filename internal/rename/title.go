// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rename

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// TitleFromText guesses a paper title from first-page text. Blank lines,
// rule lines made of _-=*, lines mentioning doi.org or http, and
// all-digit lines are skipped. A line is a candidate when it is the first
// candidate or follows a blank or rule line. The longest candidate wins.
func TitleFromText(text string) string {
	lines := strings.Split(text, "\n")
	var candidates []string
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isRule(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "doi.org") || strings.Contains(lower, "http") {
			continue
		}
		if allDigits(line) {
			continue
		}

		if len(candidates) == 0 || i == 0 || breaksBlock(lines[i-1]) {
			candidates = append(candidates, line)
		}
	}

	best := ""
	for _, c := range candidates {
		if utf8.RuneCountInString(c) > utf8.RuneCountInString(best) {
			best = c
		}
	}
	return best
}

func breaksBlock(prev string) bool {
	prev = strings.TrimSpace(prev)
	return prev == "" || isRule(prev)
}

func isRule(s string) bool {
	return strings.Trim(s, "_-=*") == ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Extractor returns the text of a PDF's first page.
type Extractor interface {
	FirstPageText(path string) (string, error)
}

// PDFText extracts first-page text with github.com/ledongthuc/pdf. Text
// rows become lines; a vertical gap noticeably wider than the usual line
// spacing becomes a blank line so title blocks stay separated.
type PDFText struct{}

// FirstPageText implements Extractor.
func (PDFText) FirstPageText(path string) (text string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("reading PDF: %v", p)
		}
	}()

	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return page.GetPlainText(nil)
	}
	return joinRows(rows), nil
}

func joinRows(rows pdf.Rows) string {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var gaps []int64
	for i := 1; i < len(rows); i++ {
		gaps = append(gaps, rows[i-1].Position-rows[i].Position)
	}
	typical := median(gaps)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
			if typical > 0 && gaps[i-1]*2 > typical*3 {
				b.WriteByte('\n')
			}
		}
		b.WriteString(rowText(row.Content))
	}
	return b.String()
}

// rowText concatenates glyphs, adding a space where the horizontal gap
// between glyphs is wider than a fraction of the font size.
func rowText(texts pdf.TextHorizontal) string {
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })
	var b strings.Builder
	var end float64
	for i, t := range texts {
		if i > 0 && t.X-end > t.FontSize*0.2 && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		end = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}

func median(xs []int64) int64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]int64(nil), xs...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s[len(s)/2]
}
