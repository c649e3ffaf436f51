// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/internal/scoring"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,year,url,isOpenAccess,openAccessPdf"

// SemanticScholar searches Semantic Scholar for open-access papers.
type SemanticScholar struct {
	Env Env
}

// Name returns the adapter identifier.
func (s *SemanticScholar) Name() string { return "semantic-scholar" }

// Applies is true for every subject.
func (s *SemanticScholar) Applies(string) bool { return true }

// Discover queries Semantic Scholar and keeps papers with an open copy.
func (s *SemanticScholar) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	params := url.Values{
		"query":  {req.Subject},
		"limit":  {fmt.Sprintf("%d", perPage(req.MaxResults, 100))},
		"fields": {semanticFields},
	}

	var headers []string
	if s.Env.SemanticScholarKey != "" {
		headers = []string{"x-api-key", s.Env.SemanticScholarKey}
	}

	var sr semanticResponse
	if err := getJSON(ctx, s.Env, semanticAPIBase+"?"+params.Encode(), &sr, headers...); err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}

	var out []types.DiscoveredResource
	for _, p := range sr.Data {
		if !p.IsOpenAccess && p.OpenAccessPDF.URL == "" {
			continue
		}
		link := p.URL
		if p.OpenAccessPDF.URL != "" {
			link = p.OpenAccessPDF.URL
		}
		if link == "" {
			continue
		}
		var authors []string
		for _, a := range p.Authors {
			authors = append(authors, a.Name)
		}
		institution := scoring.InstitutionForHost(link)
		if institution == "" {
			institution = "Semantic Scholar"
		}
		out = append(out, types.DiscoveredResource{
			URL:          link,
			Title:        p.Title,
			Author:       joinAuthors(authors),
			Institution:  institution,
			Year:         p.Year,
			ResourceType: "paper",
			License:      compliance.ClassifyLicense(p.OpenAccessPDF.License),
			Access:       types.AccessOpen,
			Source:       s.Name(),
		})
	}
	return out, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Year          int              `json:"year"`
	URL           string           `json:"url"`
	IsOpenAccess  bool             `json:"isOpenAccess"`
	OpenAccessPDF semanticOpenPDF  `json:"openAccessPdf"`
	Authors       []semanticAuthor `json:"authors"`
}

type semanticOpenPDF struct {
	URL     string `json:"url"`
	License string `json:"license"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}
