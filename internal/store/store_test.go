package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverModernc, filepath.Join(t.TempDir(), "data", "curriculum.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResource(id, url, checksum string) *types.Resource {
	return &types.Resource{
		ID:                id,
		Title:             "Calculus Volume 1",
		Creators:          []string{"Gilbert Strang", "Edwin Herman"},
		Institution:       "OpenStax",
		URL:               url,
		Type:              "textbook",
		License:           types.LicenseCCBY,
		Access:            types.AccessOpen,
		TopicTags:         []string{"calculus", "undergraduate"},
		Level:             "undergraduate",
		ExtractedTextPath: "data/extracted/" + checksum[:4] + ".txt",
		References:        []string{"https://example.org/ref"},
		RetrievedAt:       "2026-01-02T03:04:05Z",
		Checksum:          checksum,
		CurationStatus:    types.CurationAutomated,
		Provenance: types.Provenance{
			SourceURL:       url,
			RetrievalDate:   "2026-01-02T03:04:05Z",
			LicenseNotes:    "Detected CC-BY",
			CitationSnippet: "Calculus Volume 1. OpenStax.",
			ComplianceFlags: []string{},
		},
	}
}

// --- open and migrate ---

func TestOpen_CreatesSchemaAndIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "curriculum.db")
	s, err := Open("", path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s, err = Open(DriverModernc, path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)
}

// --- upsert and lookup ---

func TestUpsert_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := sampleResource("openstax-org-aaaa", "https://openstax.org/books/calculus-volume-1", "aaaa1111")
	require.NoError(t, s.Upsert(ctx, r, "Limits and continuity. The derivative of a function."))

	got, err := s.GetByChecksum(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, *r, *got)

	byID, err := s.GetByID(ctx, "openstax-org-aaaa")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111", byID.Checksum)
}

func TestGet_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetByChecksum(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert_SameChecksumOverwritesContentKeepsCuration(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := sampleResource("openstax-org-aaaa", "https://openstax.org/books/calc", "aaaa1111")
	require.NoError(t, s.Upsert(ctx, r, "first body"))
	_, err := s.UpdateReview(ctx, r.ID, types.CurationReviewed, "alice", "looks good")
	require.NoError(t, err)

	again := sampleResource("some-other-id", "https://openstax.org/books/calc", "aaaa1111")
	again.RetrievedAt = "2026-02-01T00:00:00Z"
	again.Title = "Calculus Volume 1 (2nd ed.)"
	require.NoError(t, s.Upsert(ctx, again, "second body"))
	assert.Equal(t, "openstax-org-aaaa", again.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Calculus Volume 1 (2nd ed.)", all[0].Title)
	assert.Equal(t, "2026-02-01T00:00:00Z", all[0].RetrievedAt)
	assert.Equal(t, types.CurationReviewed, all[0].CurationStatus)
	assert.Equal(t, "alice", all[0].ReviewedBy)

	hits, err := s.Search(ctx, "second", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	hits, err = s.Search(ctx, "first", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsert_SameURLNewChecksumUpdatesInPlace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := sampleResource("openstax-org-aaaa", "https://openstax.org/books/calc", "aaaa1111")
	require.NoError(t, s.Upsert(ctx, r, "old content about limits"))

	changed := sampleResource("openstax-org-bbbb", "https://openstax.org/books/calc", "bbbb2222")
	require.NoError(t, s.Upsert(ctx, changed, "new content about integrals"))
	assert.Equal(t, "openstax-org-aaaa", changed.ID)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "bbbb2222", all[0].Checksum)

	_, err = s.GetByChecksum(ctx, "aaaa1111")
	assert.ErrorIs(t, err, ErrNotFound)

	hits, err := s.Search(ctx, "integrals", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "openstax-org-aaaa", hits[0].ID)
}

func TestUpsert_SameURLChecksumOfOtherRowIsConflict(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, sampleResource("openstax-org-aaaa", "https://openstax.org/books/calc", "aaaa1111"), "limits"))
	require.NoError(t, s.Upsert(ctx, sampleResource("openstax-org-bbbb", "https://openstax.org/books/stats", "bbbb2222"), "statistics"))

	clash := sampleResource("openstax-org-cccc", "https://openstax.org/books/calc", "bbbb2222")
	err := s.Upsert(ctx, clash, "limits again")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChecksumConflict)
	assert.Contains(t, err.Error(), "openstax-org-bbbb")

	kept, err := s.GetByURL(ctx, "https://openstax.org/books/calc")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111", kept.Checksum)
}

func TestGetByURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, sampleResource("openstax-org-aaaa", "https://openstax.org/books/calc", "aaaa1111"), "limits"))

	got, err := s.GetByURL(ctx, "https://openstax.org/books/calc")
	require.NoError(t, err)
	assert.Equal(t, "openstax-org-aaaa", got.ID)

	_, err = s.GetByURL(ctx, "https://openstax.org/books/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsert_Concurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sampleResource(
				fmt.Sprintf("example-org-%02d", i),
				fmt.Sprintf("https://example.org/r/%d", i),
				fmt.Sprintf("sum%04d", i),
			)
			errs <- s.Upsert(ctx, r, "calculus notes")
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

// --- listing ---

func TestListBySubjectLevel(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	calc := sampleResource("a", "https://a.org/calc", "aaaa0001")
	calc.RetrievedAt = "2026-01-01T00:00:00Z"

	newer := sampleResource("b", "https://b.org/calc", "bbbb0002")
	newer.Title = "Single Variable Calculus"
	newer.RetrievedAt = "2026-03-01T00:00:00Z"

	graduate := sampleResource("c", "https://c.org/calc", "cccc0003")
	graduate.Level = "graduate"

	noLevel := sampleResource("d", "https://d.org/calc", "dddd0004")
	noLevel.Level = ""
	noLevel.RetrievedAt = "2025-12-01T00:00:00Z"

	tagged := sampleResource("e", "https://e.org/notes", "eeee0005")
	tagged.Title = "Lecture Notes"
	tagged.RetrievedAt = "2025-11-01T00:00:00Z"

	rejected := sampleResource("f", "https://f.org/calc", "ffff0006")

	other := sampleResource("g", "https://g.org/bio", "gggg0007")
	other.Title = "Molecular Biology"
	other.TopicTags = []string{"biology"}

	for _, r := range []*types.Resource{calc, newer, graduate, noLevel, tagged, rejected, other} {
		require.NoError(t, s.Upsert(ctx, r, "body"))
	}
	_, err := s.UpdateReview(ctx, "f", types.CurationRejected, "bob", "off topic")
	require.NoError(t, err)

	got, err := s.ListBySubjectLevel(ctx, "Calculus", "undergraduate")
	require.NoError(t, err)

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "a", "d", "e"}, ids)

	all, err := s.ListBySubjectLevel(ctx, "calculus", "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListBySubjectLevel_EscapesWildcards(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, sampleResource("a", "https://a.org/x", "aaaa0001"), "body"))

	got, err := s.ListBySubjectLevel(ctx, "%", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// --- search ---

func TestMatchQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"derivative", `"derivative"*`},
		{"chain rule", `"chain"* "rule"*`},
		{`"quoted" OR`, `"quoted"* "OR"*`},
		{`  ""  `, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchQuery(tt.in), "input %q", tt.in)
	}
}

func TestSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	calc := sampleResource("calc", "https://openstax.org/calc", "aaaa0001")
	require.NoError(t, s.Upsert(ctx, calc, "The derivative measures instantaneous rate of change."))

	bio := sampleResource("bio", "https://example.org/bio", "bbbb0002")
	bio.Title = "Cell Biology"
	bio.Institution = "Example University"
	bio.TopicTags = []string{"biology"}
	require.NoError(t, s.Upsert(ctx, bio, "Mitochondria produce energy for the cell."))

	hits, err := s.Search(ctx, "deriv", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "calc", hits[0].ID)
	assert.Equal(t, types.LicenseCCBY, hits[0].License)
	assert.Contains(t, hits[0].Snippet, "[derivative]")

	hits, err = s.Search(ctx, "openstax", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "calc", hits[0].ID)

	hits, err = s.Search(ctx, "biology", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "bio", hits[0].ID)

	_, err = s.Search(ctx, `""`, 10)
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestSearch_PunctuationIsNotSyntax(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, sampleResource("calc", "https://a.org/c", "aaaa0001"), "limits"))

	_, err := s.Search(ctx, `limits AND (NOT`, 10)
	assert.NoError(t, err)
}

// --- review ---

func TestUpdateReview(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, sampleResource("calc", "https://a.org/c", "aaaa0001"), "x"))

	got, err := s.UpdateReview(ctx, "calc", types.CurationReviewed, "alice", "checked license")
	require.NoError(t, err)
	assert.Equal(t, types.CurationReviewed, got.CurationStatus)
	assert.Equal(t, "alice", got.ReviewedBy)
	assert.Equal(t, "checked license", got.ReviewNotes)
	assert.NotEmpty(t, got.ReviewedAt)

	_, err = s.UpdateReview(ctx, "missing", types.CurationReviewed, "alice", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateReview(ctx, "calc", types.CurationStatus("approved"), "alice", "")
	assert.Error(t, err)
}

// --- export ---

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, sampleResource("calc", "https://a.org/c", "aaaa0001"), "x"))
	dir := t.TempDir()

	n, err := s.ExportJSON(ctx, filepath.Join(dir, "out", "resources.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, err := os.ReadFile(filepath.Join(dir, "out", "resources.json"))
	require.NoError(t, err)
	var fromJSON []types.Resource
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "calc", fromJSON[0].ID)

	n, err = s.ExportYAML(ctx, filepath.Join(dir, "resources.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, err = os.ReadFile(filepath.Join(dir, "resources.yaml"))
	require.NoError(t, err)
	var fromYAML []types.Resource
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "aaaa0001", fromYAML[0].Checksum)
}

func TestExport_EmptyStoreWritesEmptyList(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(t.TempDir(), "resources.json")
	n, err := s.ExportJSON(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
