// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var errNoPDFLink = errors.New("no PDF link on landing page")

// isHTML reports whether a Content-Type header names an HTML document.
func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// findPDFLink looks for a publisher's citation_pdf_url meta tag, then for
// the first anchor whose path ends in .pdf. Relative links are resolved
// against base.
func findPDFLink(body io.Reader, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parsing landing page: %w", err)
	}

	var link string
	if content, ok := doc.Find(`meta[name="citation_pdf_url"]`).First().Attr("content"); ok {
		link = strings.TrimSpace(content)
	}
	if link == "" {
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			u, err := url.Parse(href)
			if err != nil || !strings.EqualFold(path.Ext(u.Path), ".pdf") {
				return true
			}
			link = href
			return false
		})
	}
	if link == "" {
		return "", errNoPDFLink
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("bad PDF link %q: %w", link, err)
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}
