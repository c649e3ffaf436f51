// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// openStaxCMSBase is the OpenStax CMS pages endpoint. Declared as a var so
// tests can substitute an httptest server.
var openStaxCMSBase = "https://openstax.org/apps/cms/api/v2/pages/"

const openStaxWebBase = "https://openstax.org/details/books/"

func openStaxBookURL(slug string) string {
	return openStaxWebBase + slug
}

// OpenStax queries the live OpenStax book list and filters it by subject.
// Any failure falls back to a bundled catalog of core titles.
type OpenStax struct {
	Env Env
}

// NewOpenStax returns the OpenStax adapter.
func NewOpenStax(env Env) *OpenStax {
	return &OpenStax{Env: env}
}

// Name returns the adapter identifier.
func (o *OpenStax) Name() string { return "openstax" }

// Applies is true for every subject.
func (o *OpenStax) Applies(string) bool { return true }

// Discover returns live books matching the subject, or fallback entries.
func (o *OpenStax) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	books, err := o.fetchBooks(ctx)
	if err != nil {
		logger.Debug("openstax: CMS unavailable, using fallback catalog: %v", err)
		return filterCatalog(openStaxFallback, req.Subject, o.Name()), nil
	}

	var out []types.DiscoveredResource
	for _, b := range books {
		if b.BookState != "" && b.BookState != "live" {
			continue
		}
		if !matchesSubject(req.Subject, b.Title) {
			continue
		}
		license := compliance.ClassifyLicense(b.LicenseName)
		if license == types.LicenseUnknown {
			license = types.LicenseCCBY
		}
		out = append(out, types.DiscoveredResource{
			URL:          openStaxBookURL(b.Meta.Slug),
			Title:        b.Title,
			Institution:  "OpenStax",
			ResourceType: "textbook",
			License:      license,
			Access:       types.AccessOpen,
			Source:       o.Name(),
		})
	}
	return out, nil
}

func (o *OpenStax) fetchBooks(ctx context.Context) ([]openStaxBookPage, error) {
	params := url.Values{
		"type":   {"books.Book"},
		"fields": {"title,book_state,license_name"},
		"limit":  {"250"},
	}
	var resp openStaxPagesResponse
	if err := getJSON(ctx, o.Env, openStaxCMSBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("OpenStax CMS request: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("OpenStax CMS returned no books")
	}
	return resp.Items, nil
}

// OpenStax CMS JSON structures.
type openStaxPagesResponse struct {
	Items []openStaxBookPage `json:"items"`
}

type openStaxBookPage struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	BookState   string           `json:"book_state"`
	LicenseName string           `json:"license_name"`
	Meta        openStaxPageMeta `json:"meta"`
}

type openStaxPageMeta struct {
	Slug string `json:"slug"`
}
