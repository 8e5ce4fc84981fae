// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rename gives downloaded PDFs descriptive names. It reads a
// title off each PDF's first page, fuzzy-matches it against the titles of
// a converted table, and renames the file to "<title>-<year>-<source>.pdf".
package rename

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-integration/pkg/types"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultCutoff  = 0.5
	DefaultWorkers = 4
)

var (
	// ErrNoMatch is returned when no catalog title is similar enough.
	ErrNoMatch = errors.New("no matching title")

	// ErrNoTitle is returned when no title could be read from the PDF.
	ErrNoTitle = errors.New("no title found")

	errTargetExists = errors.New("target file already exists")
)

var invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeName replaces characters that are not allowed in file names on
// common platforms with '-'.
func SanitizeName(name string) string {
	return invalidNameChars.ReplaceAllString(name, "-")
}

// Entry is one paper the renamer can match against.
type Entry struct {
	Title string
	Year  string

	// BaseName is the target file name without the .pdf extension.
	BaseName string
}

// Catalog holds the match candidates built from table rows.
type Catalog struct {
	entries []Entry
	titles  []string
	names   map[string]bool
}

// NewCatalog builds a catalog from papers. Papers without a title are
// ignored. A repeated title keeps its first position and the last
// paper's details.
func NewCatalog(papers []types.Paper) *Catalog {
	c := &Catalog{names: make(map[string]bool)}
	pos := make(map[string]int)
	for _, p := range papers {
		if p.Title == "" {
			continue
		}
		e := Entry{Title: p.Title, Year: p.Year, BaseName: TargetName(p)}
		if i, ok := pos[p.Title]; ok {
			c.entries[i] = e
		} else {
			pos[p.Title] = len(c.entries)
			c.entries = append(c.entries, e)
			c.titles = append(c.titles, p.Title)
		}
	}
	for _, e := range c.entries {
		c.names[e.BaseName] = true
	}
	return c
}

// TargetName returns the sanitized "<title>-<year>-<source>" base name.
// Empty year or source parts are left out.
func TargetName(p types.Paper) string {
	parts := []string{p.Title}
	for _, s := range []string{p.Year, p.Source} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return SanitizeName(strings.Join(parts, "-"))
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Renamed reports whether file already carries a catalog name.
func (c *Catalog) Renamed(file string) bool {
	return c.names[strings.TrimSuffix(file, filepath.Ext(file))]
}

// Match returns the entry whose title best matches title.
func (c *Catalog) Match(title string, cutoff float64) (Entry, float64, error) {
	i, score := BestMatch(title, c.titles, cutoff)
	if i < 0 {
		return Entry{}, 0, ErrNoMatch
	}
	return c.entries[i], score, nil
}

// Options configures RenameDir.
type Options struct {
	// Cutoff is the minimum similarity, 0..1.
	Cutoff float64

	// Workers bounds concurrent PDF processing.
	Workers int

	// Extractor reads first-page text. Nil uses PDFText.
	Extractor Extractor
}

// Status classifies a per-file outcome.
type Status string

const (
	StatusRenamed Status = "renamed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome for one file.
type Result struct {
	File    string
	NewName string
	Status  Status
	Score   float64
	Err     error
}

// String formats the result as a status line.
func (r Result) String() string {
	switch r.Status {
	case StatusRenamed:
		return fmt.Sprintf("renamed: %s -> %s (%.2f)", r.File, r.NewName, r.Score)
	case StatusSkipped:
		return fmt.Sprintf("skipped: %s (already renamed)", r.File)
	default:
		return fmt.Sprintf("failed:  %s (%v)", r.File, r.Err)
	}
}

// BatchResult holds the outcome of a RenameDir run.
type BatchResult struct {
	Renamed int
	Skipped int
	Failed  int
	Results []Result
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Renamed + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RenameDir renames the PDFs in dir using the catalog. Files are processed
// concurrently by up to opts.Workers goroutines; result lines are written
// to w in file-name order once all files are done.
func RenameDir(ctx context.Context, dir string, cat *Catalog, opts Options, w io.Writer) (BatchResult, error) {
	if opts.Cutoff <= 0 {
		opts.Cutoff = DefaultCutoff
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Extractor == nil {
		opts.Extractor = PDFText{}
	}

	files, err := pdfFiles(dir)
	if err != nil {
		return BatchResult{}, err
	}
	fmt.Fprintf(w, "PDF files to process: %d\n", len(files))

	r := &renamer{dir: dir, cat: cat, opts: opts}
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.renameOne(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Results: results}
	for _, res := range results {
		fmt.Fprintln(w, res)
		switch res.Status {
		case StatusRenamed:
			batch.Renamed++
		case StatusSkipped:
			batch.Skipped++
		default:
			batch.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d renamed, %d skipped, %d failed (total: %d)\n",
		batch.Renamed, batch.Skipped, batch.Failed, batch.Total())
	return batch, nil
}

func pdfFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

type renamer struct {
	dir  string
	cat  *Catalog
	opts Options

	// mu serializes the exists-check and rename so two files matching the
	// same title cannot both claim the target.
	mu sync.Mutex
}

func (r *renamer) renameOne(file string) Result {
	res := Result{File: file}
	if r.cat.Renamed(file) {
		res.Status = StatusSkipped
		return res
	}

	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	src := filepath.Join(r.dir, file)
	text, err := r.opts.Extractor.FirstPageText(src)
	if err != nil {
		return fail(err)
	}
	title := TitleFromText(text)
	if title == "" {
		return fail(ErrNoTitle)
	}

	entry, score, err := r.cat.Match(title, r.opts.Cutoff)
	if err != nil {
		return fail(fmt.Errorf("%w for %q", err, title))
	}
	res.Score = score
	res.NewName = entry.BaseName + ".pdf"

	r.mu.Lock()
	defer r.mu.Unlock()
	dst := filepath.Join(r.dir, res.NewName)
	if _, err := os.Stat(dst); err == nil {
		return fail(fmt.Errorf("%w: %s", errTargetExists, res.NewName))
	}
	if err := os.Rename(src, dst); err != nil {
		return fail(fmt.Errorf("renaming: %w", err))
	}
	res.Status = StatusRenamed
	return res
}
