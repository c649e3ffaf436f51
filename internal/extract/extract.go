// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns fetched HTML and PDF bodies into normalized plain
// text plus the metadata ingestion needs: title, byline, site name, a
// license sample, and outbound references.
package extract

import (
	"bytes"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// UntitledTitle is used when no title can be derived.
const UntitledTitle = "Untitled Resource"

// Kind is the detected document format.
type Kind string

const (
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
)

// Extraction is the result of parsing one document.
type Extraction struct {
	Kind     Kind
	Title    string
	Byline   string
	SiteName string
	Text     string

	// LicenseText holds license statements found outside the main content
	// (rel=license links, rights metadata, footer notices).
	LicenseText string

	// PageCount is set for PDFs.
	PageCount int

	References []string
}

// IsPDF reports whether a response is a PDF by content type, URL suffix,
// or magic bytes.
func IsPDF(contentType, rawURL string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	if bytes.HasPrefix(body, []byte("%PDF-")) {
		return true
	}
	if u, err := url.Parse(rawURL); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return true
	}
	return false
}

// titleFromURL returns the last non-empty path segment of rawURL, unescaped.
func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" || seg == "" {
		return ""
	}
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	return seg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
