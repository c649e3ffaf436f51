// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
	"github.com/pdiddy/curriculum-engine/internal/logger"
)

// IdentifierType classifies an ingest target.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeURL
	TypeArxiv
	TypeDOI
)

func (t IdentifierType) String() string {
	switch t {
	case TypeURL:
		return "url"
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	default:
		return "unknown"
	}
}

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase    = "https://arxiv.org/pdf/"
	doiBase         = "https://doi.org/"
	openAlexWorkAPI = "https://api.openalex.org/works/"
)

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568", with an optional
// "doi:" prefix.
var doiPattern = regexp.MustCompile(`^(?:doi:)?(10\.\d{4,9}/\S+)$`)

// Classify determines the identifier type and returns the normalized form.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}
	if m := doiPattern.FindStringSubmatch(identifier); m != nil {
		return TypeDOI, m[1]
	}
	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return TypeURL, identifier
	}
	return TypeUnknown, identifier
}

// Resolver turns arXiv ids and DOIs into fetchable URLs.
type Resolver struct {
	Client       *http.Client
	UserAgent    string
	ContactEmail string
}

// Resolve returns the URL to ingest for identifier. DOIs are looked up in
// OpenAlex for an open-access copy and otherwise go through doi.org.
// Unrecognized input is returned unchanged so URL compliance can judge it.
func (r *Resolver) Resolve(ctx context.Context, identifier string) string {
	idType, normalized := Classify(identifier)
	switch idType {
	case TypeArxiv:
		return arxivPDFBase + normalized
	case TypeDOI:
		if oa, err := r.openAccessURL(ctx, normalized); err != nil {
			logger.Debug("openalex lookup for %s failed: %v", normalized, err)
		} else if oa != "" {
			return oa
		}
		return doiBase + normalized
	default:
		return normalized
	}
}

// openAccessURL asks OpenAlex for the best open-access location of doi.
// It returns "" when the work has none.
func (r *Resolver) openAccessURL(ctx context.Context, doi string) (string, error) {
	if r == nil || r.Client == nil {
		return "", nil
	}
	apiURL := openAlexWorkAPI + "https://doi.org/" + doi
	if r.ContactEmail != "" {
		apiURL += "?mailto=" + url.QueryEscape(r.ContactEmail)
	}

	var work openAlexWork
	if err := httputil.GetJSON(ctx, r.Client, apiURL, map[string]string{"User-Agent": r.UserAgent}, &work); err != nil {
		return "", err
	}
	if work.BestOALocation == nil {
		return "", nil
	}
	if work.BestOALocation.PDFURL != "" {
		return work.BestOALocation.PDFURL, nil
	}
	return work.BestOALocation.LandingURL, nil
}

// openAlexWork captures the fields needed from an OpenAlex work record.
type openAlexWork struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}
