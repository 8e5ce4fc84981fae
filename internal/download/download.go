// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches paper PDFs listed in a converted table and
// builds URL lists for manual retrieval.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paper-integration/internal/httputil"
	"github.com/pdiddy/paper-integration/pkg/types"
)

// ReportFile is written to the download directory after each batch.
const ReportFile = "download_report.txt"

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Files      []string
}

// Total returns the number of papers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any paper failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// NewClient returns an HTTP client with the configured timeout.
func NewClient(cfg types.DownloadConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// DownloadPaper fetches one paper into cfg.DownloadDir. An existing file
// is left alone and reported as skipped.
func DownloadPaper(ctx context.Context, client *http.Client, p types.Paper, cfg types.DownloadConfig, w io.Writer) (path string, skipped bool, err error) {
	name := FileName(p.Year, p.Title)
	path = filepath.Join(cfg.DownloadDir, name)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return path, true, nil
	}

	pdfURL, err := PaperURL(p)
	if err != nil {
		return "", false, err
	}
	if doi := NormalizeDOI(p.DOI); doi != "" {
		if oaURL, err := resolveOpenAlex(ctx, client, doi, cfg); err == nil && oaURL != "" {
			pdfURL = oaURL
		}
	}

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", cfg.DownloadDir, err)
	}

	fmt.Fprintf(w, "downloading: %s\n", name)
	if err := downloadFile(ctx, client, pdfURL, path, cfg, w); err != nil {
		return "", false, err
	}
	return path, false, nil
}

// DownloadBatch downloads every paper, printing per-item status and a
// summary. It continues after individual failures and pauses cfg.Delay
// between consecutive downloads. It stops early only when ctx is done.
func DownloadBatch(ctx context.Context, client *http.Client, papers []types.Paper, cfg types.DownloadConfig, w io.Writer) BatchResult {
	var result BatchResult
	fetched := false
	for _, p := range papers {
		if ctx.Err() != nil {
			break
		}
		if fetched && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Delay):
			}
		}

		path, skipped, err := DownloadPaper(ctx, client, p, cfg, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", label(p), err)
			result.Failed++
		case skipped:
			result.Skipped++
		default:
			fmt.Fprintf(w, "downloaded: %s\n", filepath.Base(path))
			result.Downloaded++
			result.Files = append(result.Files, path)
		}
		fetched = !skipped && !errors.Is(err, ErrNoURL)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// WriteReport writes the batch summary to dir/download_report.txt and
// returns its path.
func WriteReport(dir string, total int, result BatchResult, now time.Time) (string, error) {
	report := fmt.Sprintf(`Download report
===============
Total papers: %d
Downloaded: %d
Failed: %d
Skipped: %d
Download directory: %s
Generated: %s
`, total, result.Downloaded, result.Failed, result.Skipped, dir, now.Format("2006-01-02 15:04:05"))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// downloadFile fetches rawURL to destPath through a temporary file. An
// HTML response is treated as a landing page and searched for a PDF link,
// which is then fetched in its place.
func downloadFile(ctx context.Context, client *http.Client, rawURL, destPath string, cfg types.DownloadConfig, w io.Writer) error {
	resp, err := fetch(ctx, client, rawURL, cfg, w)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if isHTML(resp.Header.Get("Content-Type")) {
		link, err := findPDFLink(resp.Body, resp.Request.URL)
		if err != nil {
			return fmt.Errorf("%s: %w", rawURL, err)
		}
		resp, err = fetch(ctx, client, link, cfg, w)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string, cfg types.DownloadConfig, w io.Writer) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf, text/html;q=0.5")

	resp, err := httputil.Fetch(ctx, client, req, httputil.Policy{
		Retries: cfg.RetryCount,
		Delay:   cfg.Delay,
		OnRetry: func(attempt int, err error) {
			fmt.Fprintf(w, "  retrying (%d/%d): %v\n", attempt, cfg.RetryCount, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	return resp, nil
}

func label(p types.Paper) string {
	if p.Title != "" {
		return p.Title
	}
	return p.CiteKey
}
