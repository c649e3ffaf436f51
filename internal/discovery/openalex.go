// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/internal/scoring"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlex searches open-access works in OpenAlex.
type OpenAlex struct {
	Env Env
}

// Name returns the adapter identifier.
func (o *OpenAlex) Name() string { return "openalex" }

// Applies is true for every subject.
func (o *OpenAlex) Applies(string) bool { return true }

// Discover queries OpenAlex for open-access works on the subject.
func (o *OpenAlex) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	params := url.Values{
		"search":   {req.Subject},
		"filter":   {"is_oa:true"},
		"per_page": {fmt.Sprintf("%d", perPage(req.MaxResults, 50))},
		"page":     {"1"},
	}
	if o.Env.ContactEmail != "" {
		params.Set("mailto", o.Env.ContactEmail)
	}

	var resp openAlexResponse
	if err := getJSON(ctx, o.Env, openAlexSearchBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}

	var out []types.DiscoveredResource
	for _, w := range resp.Results {
		link := w.landingURL()
		if link == "" || strings.TrimSpace(w.Title) == "" {
			continue
		}

		var authors []string
		institution := scoring.InstitutionForHost(link)
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				authors = append(authors, a.Author.DisplayName)
			}
			if institution == "" && len(a.Institutions) > 0 {
				institution = a.Institutions[0].DisplayName
			}
		}
		if institution == "" {
			institution = "OpenAlex"
		}

		out = append(out, types.DiscoveredResource{
			URL:          link,
			Title:        strings.TrimSpace(w.Title),
			Author:       joinAuthors(authors),
			Institution:  institution,
			Year:         w.PublicationYear,
			ResourceType: openAlexType(w.Type),
			License:      compliance.ClassifyLicense(w.BestOALocation.License),
			Access:       types.AccessOpen,
			Source:       o.Name(),
		})
	}
	return out, nil
}

func openAlexType(t string) string {
	switch t {
	case "book", "book-chapter", "monograph":
		return "textbook"
	case "", "article", "preprint", "posted-content", "review":
		return "paper"
	default:
		return t
	}
}

// landingURL prefers the open-access copy, then the DOI, then the
// OpenAlex record itself.
func (w openAlexWork) landingURL() string {
	switch {
	case w.OpenAccess.OAURL != "":
		return w.OpenAccess.OAURL
	case w.BestOALocation.LandingPageURL != "":
		return w.BestOALocation.LandingPageURL
	case w.DOI != "":
		return w.DOI
	default:
		return w.ID
	}
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	Type            string               `json:"type"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	OpenAccess      openAlexOpenAccess   `json:"open_access"`
	BestOALocation  openAlexLocation     `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author       openAlexAuthor        `json:"author"`
	Institutions []openAlexInstitution `json:"institutions"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexInstitution struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA  bool   `json:"is_oa"`
	OAURL string `json:"oa_url"`
}

type openAlexLocation struct {
	LandingPageURL string `json:"landing_page_url"`
	PDFURL         string `json:"pdf_url"`
	License        string `json:"license"`
}

// perPage clamps a requested result count to an API page size.
func perPage(requested, max int) int {
	if requested <= 0 {
		requested = DefaultMaxResults
	}
	if requested > max {
		return max
	}
	return requested
}

// joinAuthors renders up to three names, adding "et al." beyond that.
func joinAuthors(names []string) string {
	switch {
	case len(names) == 0:
		return ""
	case len(names) <= 3:
		return strings.Join(names, ", ")
	default:
		return strings.Join(names[:3], ", ") + " et al."
	}
}
