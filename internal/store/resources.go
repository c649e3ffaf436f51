// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/curriculum-engine/pkg/types"
)

const resourceColumns = `id, title, creators, institution, url, type, license, access,
	topic_tags, level, extracted_text_path, pdf_path, refs, retrieved_at, checksum,
	curation_status, reviewed_by, reviewed_at, review_notes, provenance`

// Upsert stores r and replaces its full-text row with content.
//
// A resource whose URL is already stored updates that row in place: the
// content fields and checksum are overwritten while id and curation fields
// stay as stored. Otherwise the row is inserted, with a checksum conflict
// handled the same way. On return r.ID holds the id of the stored row.
func (s *Store) Upsert(ctx context.Context, r *types.Resource, content string) error {
	creators, _ := json.Marshal(nonNil(r.Creators))
	tags, _ := json.Marshal(nonNil(r.TopicTags))
	refs, _ := json.Marshal(nonNil(r.References))
	prov, err := json.Marshal(r.Provenance)
	if err != nil {
		return fmt.Errorf("encoding provenance: %w", err)
	}
	status := r.CurationStatus
	if status == "" {
		status = types.CurationAutomated
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM resources WHERE url = ?`, r.URL,
	).Scan(&existingID)

	switch {
	case err == nil:
		var otherID string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM resources WHERE checksum = ? AND id <> ?`, r.Checksum, existingID,
		).Scan(&otherID)
		if err == nil {
			return fmt.Errorf("updating resource %s: %w (held by %s)", existingID, ErrChecksumConflict, otherID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking checksum for %s: %w", existingID, err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE resources SET
				title = ?, creators = ?, institution = ?, type = ?, license = ?,
				access = ?, topic_tags = ?, level = ?, extracted_text_path = ?,
				pdf_path = ?, refs = ?, retrieved_at = ?, checksum = ?, provenance = ?
			WHERE id = ?`,
			r.Title, string(creators), r.Institution, r.Type, string(r.License),
			string(r.Access), string(tags), r.Level, r.ExtractedTextPath,
			r.PDFPath, string(refs), r.RetrievedAt, r.Checksum, string(prov),
			existingID,
		)
		if err != nil {
			return fmt.Errorf("updating resource %s: %w", existingID, err)
		}
		r.ID = existingID

	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO resources (`+resourceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(checksum) DO UPDATE SET
				title = excluded.title,
				creators = excluded.creators,
				institution = excluded.institution,
				type = excluded.type,
				license = excluded.license,
				access = excluded.access,
				topic_tags = excluded.topic_tags,
				level = excluded.level,
				extracted_text_path = excluded.extracted_text_path,
				pdf_path = excluded.pdf_path,
				refs = excluded.refs,
				retrieved_at = excluded.retrieved_at,
				provenance = excluded.provenance`,
			r.ID, r.Title, string(creators), r.Institution, r.URL, r.Type,
			string(r.License), string(r.Access), string(tags), r.Level,
			r.ExtractedTextPath, r.PDFPath, string(refs), r.RetrievedAt, r.Checksum,
			string(status), r.ReviewedBy, r.ReviewedAt, r.ReviewNotes, string(prov),
		)
		if err != nil {
			return fmt.Errorf("inserting resource %s: %w", r.ID, err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM resources WHERE checksum = ?`, r.Checksum,
		).Scan(&r.ID); err != nil {
			return fmt.Errorf("reading resource id: %w", err)
		}

	default:
		return fmt.Errorf("looking up resource by url: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM resources_fts WHERE resource_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clearing search index for %s: %w", r.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO resources_fts (resource_id, title, institution, topic_tags, content)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Institution, strings.Join(r.TopicTags, " "), content,
	); err != nil {
		return fmt.Errorf("indexing resource %s: %w", r.ID, err)
	}

	return tx.Commit()
}

// GetByChecksum returns the resource with the given checksum, or
// ErrNotFound.
func (s *Store) GetByChecksum(ctx context.Context, checksum string) (*types.Resource, error) {
	return s.getOne(ctx, `SELECT `+resourceColumns+` FROM resources WHERE checksum = ?`, checksum)
}

// GetByURL returns the resource stored for url, or ErrNotFound.
func (s *Store) GetByURL(ctx context.Context, url string) (*types.Resource, error) {
	return s.getOne(ctx, `SELECT `+resourceColumns+` FROM resources WHERE url = ?`, url)
}

// GetByID returns the resource with the given id, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*types.Resource, error) {
	return s.getOne(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
}

func (s *Store) getOne(ctx context.Context, query string, arg string) (*types.Resource, error) {
	r, err := scanResource(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListBySubjectLevel returns non-rejected resources whose title or topic
// tags contain subject, case-insensitively, newest first. A non-empty
// level matches resources of that level or with no level recorded.
func (s *Store) ListBySubjectLevel(ctx context.Context, subject, level string) ([]types.Resource, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(subject))) + "%"
	level = strings.ToLower(strings.TrimSpace(level))

	return s.list(ctx,
		`SELECT `+resourceColumns+` FROM resources
		WHERE (lower(title) LIKE ? ESCAPE '\' OR lower(topic_tags) LIKE ? ESCAPE '\')
			AND (? = '' OR level = '' OR lower(level) = ?)
			AND curation_status != ?
		ORDER BY retrieved_at DESC, id`,
		pattern, pattern, level, level, string(types.CurationRejected),
	)
}

// List returns every stored resource ordered by id.
func (s *Store) List(ctx context.Context) ([]types.Resource, error) {
	return s.list(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY id`)
}

// Count returns the number of stored resources.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting resources: %w", err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]types.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var out []types.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateReview records a curation decision for the resource with the given id.
func (s *Store) UpdateReview(ctx context.Context, id string, status types.CurationStatus, reviewer, notes string) (*types.Resource, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid curation status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET curation_status = ?, reviewed_by = ?, reviewed_at = ?, review_notes = ?
		WHERE id = ?`,
		string(status), reviewer, time.Now().UTC().Format(time.RFC3339), notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating review for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*types.Resource, error) {
	var (
		r                          types.Resource
		creators, tags, refs, prov string
		license, access, curation  string
	)
	if err := row.Scan(
		&r.ID, &r.Title, &creators, &r.Institution, &r.URL, &r.Type, &license, &access,
		&tags, &r.Level, &r.ExtractedTextPath, &r.PDFPath, &refs, &r.RetrievedAt, &r.Checksum,
		&curation, &r.ReviewedBy, &r.ReviewedAt, &r.ReviewNotes, &prov,
	); err != nil {
		return nil, err
	}
	r.License = types.LicenseType(license)
	r.Access = types.AccessStatus(access)
	r.CurationStatus = types.CurationStatus(curation)

	if err := json.Unmarshal([]byte(creators), &r.Creators); err != nil {
		return nil, fmt.Errorf("decoding creators for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &r.TopicTags); err != nil {
		return nil, fmt.Errorf("decoding topic tags for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(refs), &r.References); err != nil {
		return nil, fmt.Errorf("decoding references for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(prov), &r.Provenance); err != nil {
		return nil, fmt.Errorf("decoding provenance for %s: %w", r.ID, err)
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
