// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// ncbiEUtilsBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var ncbiEUtilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"

// europePMCSearchBase is the Europe PMC REST search endpoint.
var europePMCSearchBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

const ncbiTool = "curriculum-engine"

// PubMedCentral searches the PMC open-access subset through E-utilities.
// It only runs for biomedical subjects.
type PubMedCentral struct {
	Env Env
}

// Name returns the adapter identifier.
func (p *PubMedCentral) Name() string { return "pubmed-central" }

// Applies reports whether subject is biomedical.
func (p *PubMedCentral) Applies(subject string) bool { return IsBiomedical(subject) }

// Discover runs esearch for matching PMC ids, then esummary for metadata.
func (p *PubMedCentral) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	ids, err := p.search(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params := p.params()
	params.Set("id", strings.Join(ids, ","))
	var sum esummaryResponse
	if err := getJSON(ctx, p.Env, ncbiEUtilsBase+"esummary.fcgi?"+params.Encode(), &sum); err != nil {
		return nil, fmt.Errorf("PMC esummary request: %w", err)
	}

	var out []types.DiscoveredResource
	for _, id := range ids {
		raw, ok := sum.Result[id]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Title == "" {
			continue
		}
		var authors []string
		for _, a := range doc.Authors {
			authors = append(authors, a.Name)
		}
		out = append(out, types.DiscoveredResource{
			URL:          "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC" + id + "/",
			Title:        strings.TrimSpace(doc.Title),
			Author:       joinAuthors(authors),
			Institution:  "PubMed Central",
			Year:         leadingYear(doc.PubDate),
			ResourceType: "paper",
			License:      types.LicenseUnknown,
			Access:       types.AccessOpen,
			Source:       p.Name(),
		})
	}
	return out, nil
}

func (p *PubMedCentral) search(ctx context.Context, req types.DiscoveryRequest) ([]string, error) {
	params := p.params()
	params.Set("term", req.Subject+" AND open access[filter]")
	params.Set("retmax", strconv.Itoa(perPage(req.MaxResults, 50)))
	var es esearchResponse
	if err := getJSON(ctx, p.Env, ncbiEUtilsBase+"esearch.fcgi?"+params.Encode(), &es); err != nil {
		return nil, fmt.Errorf("PMC esearch request: %w", err)
	}
	return es.ESearchResult.IDList, nil
}

func (p *PubMedCentral) params() url.Values {
	v := url.Values{
		"db":      {"pmc"},
		"retmode": {"json"},
		"tool":    {ncbiTool},
	}
	if p.Env.ContactEmail != "" {
		v.Set("email", p.Env.ContactEmail)
	}
	if p.Env.NCBIKey != "" {
		v.Set("api_key", p.Env.NCBIKey)
	}
	return v
}

// E-utilities JSON structures. esummary keys each document by its uid
// alongside a "uids" array, so the result map is decoded lazily.
type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// EuropePMC searches the Europe PMC open-access corpus. It only runs for
// biomedical subjects.
type EuropePMC struct {
	Env Env
}

// Name returns the adapter identifier.
func (e *EuropePMC) Name() string { return "europe-pmc" }

// Applies reports whether subject is biomedical.
func (e *EuropePMC) Applies(subject string) bool { return IsBiomedical(subject) }

// Discover queries Europe PMC for open-access articles.
func (e *EuropePMC) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	params := url.Values{
		"query":      {req.Subject + " AND OPEN_ACCESS:y"},
		"format":     {"json"},
		"resultType": {"lite"},
		"pageSize":   {strconv.Itoa(perPage(req.MaxResults, 100))},
	}
	var resp europePMCResponse
	if err := getJSON(ctx, e.Env, europePMCSearchBase+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("Europe PMC request: %w", err)
	}

	var out []types.DiscoveredResource
	for _, r := range resp.ResultList.Result {
		if r.Title == "" {
			continue
		}
		link := "https://europepmc.org/article/" + r.Source + "/" + r.ID
		if r.PMCID != "" {
			link = "https://europepmc.org/article/PMC/" + r.PMCID
		}
		year, _ := strconv.Atoi(r.PubYear)
		out = append(out, types.DiscoveredResource{
			URL:          link,
			Title:        strings.TrimSpace(r.Title),
			Author:       strings.TrimSuffix(strings.TrimSpace(r.AuthorString), "."),
			Institution:  "Europe PMC",
			Year:         year,
			ResourceType: "paper",
			License:      compliance.ClassifyLicense(r.License),
			Access:       types.AccessOpen,
			Source:       e.Name(),
		})
	}
	return out, nil
}

// Europe PMC JSON structures.
type europePMCResponse struct {
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	PMCID        string `json:"pmcid"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	PubYear      string `json:"pubYear"`
	License      string `json:"license"`
}

// leadingYear parses a year from dates like "2021 Mar 3".
func leadingYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
