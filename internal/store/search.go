// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// DefaultSearchLimit caps search results when the caller passes zero.
const DefaultSearchLimit = 20

// ErrEmptyQuery is returned when a search query has no usable terms.
var ErrEmptyQuery = errors.New("empty search query")

// Hit is one full-text search result.
type Hit struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	URL         string            `json:"url" yaml:"url"`
	Institution string            `json:"institution" yaml:"institution"`
	License     types.LicenseType `json:"license" yaml:"license"`
	Level       string            `json:"level" yaml:"level"`
	Snippet     string            `json:"snippet" yaml:"snippet"`
	Rank        float64           `json:"rank" yaml:"rank"`
}

// MatchQuery turns free text into an FTS5 expression. Each whitespace
// token becomes a quoted prefix term so punctuation in user input cannot
// be read as query syntax.
func MatchQuery(q string) string {
	var terms []string
	for _, tok := range strings.Fields(q) {
		tok = strings.ReplaceAll(tok, `"`, "")
		if tok == "" {
			continue
		}
		terms = append(terms, `"`+tok+`"*`)
	}
	return strings.Join(terms, " ")
}

// Search runs a ranked full-text query over title, institution, topic
// tags, and extracted content.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	match := MatchQuery(query)
	if match == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.url, r.institution, r.license, r.level,
			snippet(resources_fts, -1, '[', ']', '...', 16), resources_fts.rank
		FROM resources_fts
		JOIN resources r ON r.id = resources_fts.resource_id
		WHERE resources_fts MATCH ?
		ORDER BY resources_fts.rank
		LIMIT ?`,
		match, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching resources: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h       Hit
			license string
		)
		if err := rows.Scan(&h.ID, &h.Title, &h.URL, &h.Institution, &license,
			&h.Level, &h.Snippet, &h.Rank); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		h.License = types.LicenseType(license)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
