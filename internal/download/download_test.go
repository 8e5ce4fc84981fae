// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-integration/pkg/types"
)

const fakePDF = "%PDF-1.4 fake"

func testConfig(t *testing.T) types.DownloadConfig {
	t.Helper()
	return types.DownloadConfig{
		HTTPConfig:  types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "paper-integration-test"},
		DownloadDir: filepath.Join(t.TempDir(), "downloads"),
		RetryCount:  2,
		Delay:       time.Millisecond,
	}
}

// withOpenAlex points OpenAlex lookups at a server that has no open-access
// copy of anything.
func withOpenAlex(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	if handler == nil {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"best_oa_location": null}`)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	old := openAlexAPIBase
	openAlexAPIBase = srv.URL + "/works/"
	t.Cleanup(func() { openAlexAPIBase = old })
}

func pdfServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, fakePDF)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadPaperFromURL(t *testing.T) {
	withOpenAlex(t, nil)
	srv := pdfServer(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	p := types.Paper{Title: "A Paper", Year: "2020", URL: srv.URL + "/a.pdf"}
	path, skipped, err := DownloadPaper(context.Background(), srv.Client(), p, cfg, &out)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, filepath.Join(cfg.DownloadDir, "2020_A_Paper.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))
	assert.Contains(t, out.String(), "downloading: 2020_A_Paper.pdf")
}

func TestDownloadPaperSkipsExisting(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DownloadDir, 0o755))
	existing := filepath.Join(cfg.DownloadDir, "2020_Done.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	var out bytes.Buffer
	path, skipped, err := DownloadPaper(context.Background(), http.DefaultClient,
		types.Paper{Title: "Done", Year: "2020", URL: "http://127.0.0.1:1/never"}, cfg, &out)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Equal(t, existing, path)
	assert.Contains(t, out.String(), "skipped: 2020_Done.pdf (already exists)")
}

func TestDownloadPaperNoURL(t *testing.T) {
	_, _, err := DownloadPaper(context.Background(), http.DefaultClient,
		types.Paper{Title: "Lost", Year: "2020"}, testConfig(t), io.Discard)
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestDownloadPaperUsesOpenAlexPDF(t *testing.T) {
	srv := pdfServer(t)
	var gotPath, gotMailto string
	withOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		fmt.Fprintf(w, `{"best_oa_location": {"pdf_url": %q}}`, srv.URL+"/oa.pdf")
	})

	cfg := testConfig(t)
	cfg.ContactEmail = "me@example.org"
	p := types.Paper{Title: "Open", Year: "2021", DOI: "10.1145/42"}
	path, _, err := DownloadPaper(context.Background(), srv.Client(), p, cfg, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))
	assert.Equal(t, "/works/https://doi.org/10.1145/42", gotPath)
	assert.Equal(t, "me@example.org", gotMailto)
}

func TestDownloadPaperFollowsLandingPage(t *testing.T) {
	withOpenAlex(t, nil)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/landing":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><head>
				<meta name="citation_pdf_url" content="/files/paper.pdf">
				</head><body><a href="/other.pdf">other</a></body></html>`)
		case "/files/paper.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := types.Paper{Title: "Landing", Year: "2022", URL: srv.URL + "/landing"}
	path, _, err := DownloadPaper(context.Background(), srv.Client(), p, testConfig(t), io.Discard)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))
}

func TestDownloadPaperLandingPageWithoutPDF(t *testing.T) {
	withOpenAlex(t, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/about">about</a></body></html>`)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	p := types.Paper{Title: "Paywalled", Year: "2022", URL: srv.URL + "/landing"}
	_, _, err := DownloadPaper(context.Background(), srv.Client(), p, cfg, io.Discard)
	assert.ErrorIs(t, err, errNoPDFLink)

	entries, _ := os.ReadDir(cfg.DownloadDir)
	assert.Empty(t, entries, "no partial file left behind")
}

func TestDownloadPaperRetries(t *testing.T) {
	withOpenAlex(t, nil)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, fakePDF)
	}))
	defer srv.Close()

	var out bytes.Buffer
	p := types.Paper{Title: "Flaky", Year: "2020", URL: srv.URL + "/f.pdf"}
	_, _, err := DownloadPaper(context.Background(), srv.Client(), p, testConfig(t), &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Contains(t, out.String(), "retrying (1/2)")
}

func TestDownloadBatch(t *testing.T) {
	withOpenAlex(t, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.pdf") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, fakePDF)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.RetryCount = 0
	require.NoError(t, os.MkdirAll(cfg.DownloadDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DownloadDir, "2019_Old.pdf"), nil, 0o644))

	papers := []types.Paper{
		{Title: "First", Year: "2020", URL: srv.URL + "/first.pdf"},
		{Title: "Old", Year: "2019", URL: srv.URL + "/old.pdf"},
		{Title: "Missing", Year: "2021", URL: srv.URL + "/missing.pdf"},
		{Title: "No link", Year: "2021"},
	}

	var out bytes.Buffer
	result := DownloadBatch(context.Background(), srv.Client(), papers, cfg, &out)

	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())
	assert.Equal(t, []string{filepath.Join(cfg.DownloadDir, "2020_First.pdf")}, result.Files)
	assert.Contains(t, out.String(), "failed:  No link (no DOI or URL)")
	assert.Contains(t, out.String(), "Batch summary: 1 downloaded, 1 skipped, 2 failed (total: 4)")
}

func TestDownloadBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := DownloadBatch(ctx, http.DefaultClient,
		[]types.Paper{{Title: "A", URL: "http://127.0.0.1:1/a"}}, testConfig(t), io.Discard)
	assert.Equal(t, 0, result.Total())
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	path, err := WriteReport(dir, 5, BatchResult{Downloaded: 2, Skipped: 1, Failed: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	assert.Contains(t, report, "Total papers: 5\n")
	assert.Contains(t, report, "Downloaded: 2\n")
	assert.Contains(t, report, "Failed: 2\n")
	assert.Contains(t, report, "Skipped: 1\n")
	assert.Contains(t, report, "Generated: 2024-05-06 07:08:09\n")
}

func TestFindPDFLink(t *testing.T) {
	base, _ := url.Parse("https://pub.example.org/article/1")
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "citation meta wins",
			html: `<meta name="citation_pdf_url" content="https://cdn.example.org/x.pdf"><a href="y.pdf">y</a>`,
			want: "https://cdn.example.org/x.pdf",
		},
		{
			name: "first pdf anchor",
			html: `<a href="/about">a</a><a href="files/Paper.PDF?dl=1">pdf</a><a href="z.pdf">z</a>`,
			want: "https://pub.example.org/article/files/Paper.PDF?dl=1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findPDFLink(strings.NewReader(tt.html), base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := findPDFLink(strings.NewReader(`<p>nothing</p>`), base)
	assert.ErrorIs(t, err, errNoPDFLink)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.True(t, isHTML("application/xhtml+xml"))
	assert.False(t, isHTML("application/pdf"))
	assert.False(t, isHTML(""))
}
