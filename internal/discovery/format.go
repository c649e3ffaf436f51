// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// FormatJSON writes results as an indented JSON array.
func FormatJSON(results []types.DiscoveredResource, w io.Writer) error {
	if results == nil {
		results = []types.DiscoveredResource{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// FormatTable writes results as a human-readable table.
func FormatTable(results []types.DiscoveredResource, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-24s  %-12s  %-10s  %-5s  %s\n",
		"Rank", "Title", "Institution", "Type", "License", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 124))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-50s  %-24s  %-12s  %-10s  %-5.2f  %s\n",
			i+1,
			clip(r.Title, 50),
			clip(r.Institution, 24),
			clip(r.ResourceType, 12),
			clip(string(r.License), 10),
			r.Score,
			r.Source)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

func clip(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return textutil.Truncate(s, n-3) + "..."
}

// CSLItem is a bibliographic entry in CSL-YAML form, consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Author    []CSLName `yaml:"author,omitempty"`
	Publisher string    `yaml:"publisher,omitempty"`
	Issued    *CSLDate  `yaml:"issued,omitempty"`
	URL       string    `yaml:"URL"`
	DOI       string    `yaml:"DOI,omitempty"`
	License   string    `yaml:"license,omitempty"`
}

// CSLName is a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes results as a CSL-YAML list.
func FormatCSL(results []types.DiscoveredResource, w io.Writer) error {
	items := make([]CSLItem, len(results))
	for i, r := range results {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.DiscoveredResource) CSLItem {
	item := CSLItem{
		ID:        textutil.Slug(r.Title),
		Type:      cslType(r.ResourceType),
		Title:     r.Title,
		Publisher: r.Institution,
		URL:       r.URL,
	}
	if r.License != "" && r.License != types.LicenseUnknown {
		item.License = string(r.License)
	}
	for _, a := range splitAuthors(r.Author) {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	if i := strings.Index(r.URL, "doi.org/"); i >= 0 {
		item.DOI = r.URL[i+len("doi.org/"):]
	}
	return item
}

func cslType(resourceType string) string {
	switch resourceType {
	case "textbook":
		return "book"
	case "paper":
		return "article-journal"
	case "course", "lecture-notes", "video-lecture":
		return "webpage"
	default:
		return "document"
	}
}

func splitAuthors(s string) []string {
	s = strings.TrimSuffix(strings.TrimSpace(s), " et al.")
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseAuthorName splits a full name on the last space: everything before
// is given, the last token is family. Single-token names use literal.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
