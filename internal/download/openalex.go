// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-integration/internal/httputil"
	"github.com/pdiddy/paper-integration/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

type openAlexResponse struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

// resolveOpenAlex returns the open-access PDF URL OpenAlex knows for doi,
// or "" when there is none.
func resolveOpenAlex(ctx context.Context, client *http.Client, doi string, cfg types.DownloadConfig) (string, error) {
	apiURL := openAlexAPIBase + doiResolver + doi
	if cfg.ContactEmail != "" {
		apiURL += "?mailto=" + url.QueryEscape(cfg.ContactEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating OpenAlex request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oa openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oa); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	if oa.BestOALocation == nil {
		return "", nil
	}
	return oa.BestOALocation.PDFURL, nil
}
