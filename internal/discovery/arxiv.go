// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv searches arXiv preprints.
type Arxiv struct {
	Env Env
}

// Name returns the adapter identifier.
func (a *Arxiv) Name() string { return "arxiv" }

// Applies is true for every subject.
func (a *Arxiv) Applies(string) bool { return true }

// Discover queries arXiv for preprints matching every subject term.
func (a *Arxiv) Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error) {
	q := buildArxivQuery(req.Subject)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, perPage(req.MaxResults, 50))

	var feed arxivFeed
	if err := getXML(ctx, a.Env, reqURL, &feed); err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}

	var out []types.DiscoveredResource
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}
		var authors []string
		for _, au := range entry.Authors {
			authors = append(authors, strings.TrimSpace(au.Name))
		}
		year := 0
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			year = t.Year()
		}
		out = append(out, types.DiscoveredResource{
			URL:          "https://arxiv.org/abs/" + id,
			Title:        strings.Join(strings.Fields(entry.Title), " "),
			Author:       joinAuthors(authors),
			Institution:  "arXiv",
			Year:         year,
			ResourceType: "paper",
			License:      types.LicenseUnknown,
			Access:       types.AccessOpen,
			Source:       a.Name(),
		})
	}
	return out, nil
}

// buildArxivQuery ANDs an all: clause per subject term.
func buildArxivQuery(subject string) string {
	var parts []string
	for _, term := range subjectTerms(subject) {
		parts = append(parts, "all:"+url.QueryEscape(term))
	}
	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
