// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs the fetch-and-extract pipeline for one resource:
// URL compliance, rate-limited fetch, extraction, content compliance,
// checksum dedup, artifact writes, and the store upsert.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/internal/extract"
	"github.com/pdiddy/curriculum-engine/internal/fetch"
	"github.com/pdiddy/curriculum-engine/internal/httputil"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/scoring"
	"github.com/pdiddy/curriculum-engine/internal/store"
	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// MinTextLen is the shortest extracted text, in characters, worth storing.
const MinTextLen = 120

// Skip reasons reported in Result.Reason.
const (
	ReasonURLBlocked       = "URL blocked by compliance"
	ReasonContentBlocked   = "Content blocked by compliance"
	ReasonRedirectBlocked  = "Redirect blocked by compliance"
	ReasonFetchFailed      = "Fetch failed"
	ReasonHTTPStatus       = "Non-success HTTP status"
	ReasonTooLarge         = "Download exceeds size limit"
	ReasonUnparseable      = "Unparseable content"
	ReasonInsufficientText = "Insufficient extracted text"
	ReasonDuplicate        = "Duplicate by checksum"
)

const (
	fileHashLen   = 16
	idChecksumLen = 12
	citationLen   = 240
)

// Fetcher retrieves a URL. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Store is the subset of the resource store the pipeline writes through.
type Store interface {
	GetByChecksum(ctx context.Context, checksum string) (*types.Resource, error)
	GetByURL(ctx context.Context, url string) (*types.Resource, error)
	Upsert(ctx context.Context, r *types.Resource, content string) error
}

// Config holds the compliance lists and artifact directories.
type Config struct {
	AllowedDomains          []string
	BlockedDomains          []string
	DoNotIngestPatternsPath string

	RawHTMLDir       string
	RawPDFDir        string
	ExtractedTextDir string

	// SeedConcurrency bounds concurrent ingests in SeedFromDiscovery.
	SeedConcurrency int
}

// Options tag the ingested resource.
type Options struct {
	Subject string
	Level   string
}

// Result is the outcome of one ingest. Policy rejections and transient
// failures set Skipped with a Reason; a duplicate also carries the stored
// Resource.
type Result struct {
	URL      string          `json:"url"`
	Resource *types.Resource `json:"resource,omitempty"`
	Skipped  bool            `json:"skipped"`
	Reason   string          `json:"reason,omitempty"`
	Flags    []string        `json:"flags,omitempty"`
}

// Pipeline ingests resources. It is safe for concurrent use on different
// URLs.
type Pipeline struct {
	cfg      Config
	fetcher  Fetcher
	store    Store
	log      *compliance.Log
	resolver *Resolver
	now      func() time.Time
}

// New returns a Pipeline. resolver may be nil, in which case targets must
// be URLs or arXiv ids.
func New(cfg Config, fetcher Fetcher, st Store, log *compliance.Log, resolver *Resolver) *Pipeline {
	if cfg.SeedConcurrency <= 0 {
		cfg.SeedConcurrency = 4
	}
	return &Pipeline{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    st,
		log:      log,
		resolver: resolver,
		now:      time.Now,
	}
}

// Ingest runs the pipeline for target, which may be a URL, an arXiv id, or
// a DOI. Errors are returned only for store and disk failures.
func (p *Pipeline) Ingest(ctx context.Context, target string, opts Options) (*Result, error) {
	rawURL := p.resolver.Resolve(ctx, target)
	res := &Result{URL: rawURL}
	logger.Info("ingest: %s", rawURL)

	patterns, err := compliance.LoadDoNotIngestPatterns(p.cfg.DoNotIngestPatternsPath)
	if err != nil {
		return nil, err
	}
	policy := compliance.NewPolicy(p.cfg.AllowedDomains, p.cfg.BlockedDomains, patterns)

	if d := policy.CheckURLEligibility(rawURL); !d.Allowed {
		return p.blocked(res, rawURL, ReasonURLBlocked, d.Flags)
	}

	// Every redirect hop must pass the same URL policy as the target.
	fetchCtx := fetch.WithRedirectCheck(ctx, func(target *url.URL) error {
		if d := policy.CheckURLEligibility(target.String()); !d.Allowed {
			return &redirectRejection{url: target.String(), flags: d.Flags}
		}
		return nil
	})

	resp, err := p.fetcher.Fetch(fetchCtx, rawURL)
	var rejected *redirectRejection
	switch {
	case errors.As(err, &rejected):
		return p.blocked(res, rejected.url, ReasonRedirectBlocked, rejected.flags)
	case errors.Is(err, fetch.ErrDownloadTooLarge):
		return skip(res, ReasonTooLarge), nil
	case err != nil:
		logger.Debug("ingest: fetch %s: %v", rawURL, err)
		return skip(res, ReasonFetchFailed), nil
	case !resp.OK():
		return skip(res, fmt.Sprintf("%s: %d", ReasonHTTPStatus, resp.StatusCode)), nil
	}

	isPDF := extract.IsPDF(resp.ContentType, resp.FinalURL, resp.Body)
	var ex *extract.Extraction
	if isPDF {
		ex, err = extract.PDF(resp.Body, rawURL)
	} else {
		ex, err = extract.HTML(resp.Body, rawURL)
	}
	if err != nil {
		logger.Debug("ingest: extract %s: %v", rawURL, err)
		return skip(res, ReasonUnparseable), nil
	}
	if utf8.RuneCountInString(ex.Text) < MinTextLen {
		return skip(res, ReasonInsufficientText), nil
	}

	decision := policy.EvaluateContentCompliance(ex.LicenseText, ex.Text)
	if !decision.Allowed {
		return p.blocked(res, rawURL, ReasonContentBlocked, decision.Flags)
	}
	res.Flags = decision.Flags

	checksum := textutil.Checksum(rawURL, ex.Title, ex.Text)
	existing, err := p.store.GetByChecksum(ctx, checksum)
	switch {
	case err == nil:
		res.Resource = existing
		res.Skipped = true
		res.Reason = ReasonDuplicate
		logger.Info("ingest: duplicate of %s", existing.ID)
		return res, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}

	rawPath, err := p.writeRaw(resp.Body, isPDF)
	if err != nil {
		return nil, err
	}
	textPath := filepath.Join(p.cfg.ExtractedTextDir, checksum[:fileHashLen]+".txt")
	if err := writeFile(textPath, []byte(ex.Text)); err != nil {
		return nil, fmt.Errorf("writing extracted text: %w", err)
	}

	prev, err := p.store.GetByURL(ctx, rawURL)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up previous version: %w", err)
	}

	r := p.buildResource(rawURL, checksum, textPath, ex, decision, opts)
	if isPDF {
		r.PDFPath = rawPath
	}
	if err := p.store.Upsert(ctx, r, ex.Text); err != nil {
		return nil, fmt.Errorf("storing resource: %w", err)
	}
	if prev != nil {
		removeSuperseded(prev, r)
	}

	logger.Info("ingest: stored %s (%s, %s)", r.ID, r.License, r.Type)
	res.Resource = r
	return res, nil
}

// redirectRejection stops a fetch whose redirect target fails URL
// eligibility.
type redirectRejection struct {
	url   string
	flags []string
}

func (e *redirectRejection) Error() string {
	return fmt.Sprintf("redirect to %s rejected %v", e.url, e.flags)
}

// blocked records a compliance rejection of logURL in the log and returns
// the skip.
func (p *Pipeline) blocked(res *Result, logURL, reason string, flags []string) (*Result, error) {
	if p.log != nil {
		if err := p.log.Append(logURL, reason, flags); err != nil {
			return nil, err
		}
	}
	logger.Info("ingest: %s %s %v", reason, logURL, flags)
	res.Skipped = true
	res.Reason = reason
	res.Flags = flags
	return res, nil
}

func skip(res *Result, reason string) *Result {
	logger.Info("ingest: skipped %s: %s", res.URL, reason)
	res.Skipped = true
	res.Reason = reason
	return res
}

func (p *Pipeline) writeRaw(body []byte, isPDF bool) (string, error) {
	dir, ext := p.cfg.RawHTMLDir, ".html"
	if isPDF {
		dir, ext = p.cfg.RawPDFDir, ".pdf"
	}
	path := filepath.Join(dir, textutil.SHA256Hex(string(body))[:fileHashLen]+ext)
	if err := writeFile(path, body); err != nil {
		return "", fmt.Errorf("writing raw content: %w", err)
	}
	return path, nil
}

// removeSuperseded deletes the artifacts of a previous version of the
// same URL that the updated row no longer references. Failures are logged
// only; the store is already consistent.
func removeSuperseded(prev, cur *types.Resource) {
	for _, path := range []string{prev.ExtractedTextPath, prev.PDFPath} {
		if path == "" || path == cur.ExtractedTextPath || path == cur.PDFPath {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ingest: removing superseded %s: %v", path, err)
		}
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *Pipeline) buildResource(rawURL, checksum, textPath string, ex *extract.Extraction, d types.ComplianceDecision, opts Options) *types.Resource {
	host := httputil.NormalizeHost(rawURL)
	retrieved := p.now().UTC().Format(time.RFC3339)

	institution := scoring.InstitutionForHost(host)
	if institution == "" {
		institution = ex.SiteName
	}
	if institution == "" {
		institution = host
	}

	var tags []string
	if s := strings.ToLower(strings.TrimSpace(opts.Subject)); s != "" {
		tags = append(tags, s)
	}
	if l := strings.ToLower(strings.TrimSpace(opts.Level)); l != "" {
		tags = append(tags, l)
	}

	creators := splitByline(ex.Byline)
	refs := ex.References
	if refs == nil {
		refs = []string{}
	}

	return &types.Resource{
		ID:                textutil.Slug(host) + "-" + checksum[:idChecksumLen],
		Title:             ex.Title,
		Creators:          creators,
		Institution:       institution,
		URL:               rawURL,
		Type:              resourceType(rawURL, ex),
		License:           d.LicenseGuess,
		Access:            d.Access,
		TopicTags:         textutil.Dedup(tags),
		Level:             strings.TrimSpace(opts.Level),
		ExtractedTextPath: textPath,
		References:        refs,
		RetrievedAt:       retrieved,
		Checksum:          checksum,
		CurationStatus:    types.CurationAutomated,
		Provenance: types.Provenance{
			SourceURL:       rawURL,
			RetrievalDate:   retrieved,
			LicenseNotes:    licenseNotes(d),
			CitationSnippet: citation(creators, ex.Title, institution, rawURL, retrieved),
			ComplianceFlags: d.Flags,
		},
	}
}

// resourceType guesses a coarse kind from the URL and extraction.
func resourceType(rawURL string, ex *extract.Extraction) string {
	u, _ := url.Parse(rawURL)
	host, path := "", ""
	if u != nil {
		host = strings.ToLower(u.Hostname())
		path = strings.ToLower(u.Path)
	}
	title := strings.ToLower(ex.Title)
	head := strings.ToLower(textutil.Truncate(ex.Text, 1500))

	switch {
	case scoring.IsScholarlyHost(rawURL) || (ex.Kind == extract.KindPDF && strings.Contains(head, "abstract")):
		return "paper"
	case strings.Contains(path, "/books/") || strings.Contains(path, "textbook") ||
		strings.Contains(title, "textbook") || strings.HasSuffix(host, "libretexts.org"):
		return "textbook"
	case strings.Contains(path, "/courses/") || strings.Contains(path, "/course/") || strings.Contains(title, "course"):
		return "course"
	case ex.Kind == extract.KindPDF:
		return "document"
	default:
		return "web-page"
	}
}

func splitByline(byline string) []string {
	byline = strings.TrimSpace(byline)
	byline = strings.TrimPrefix(byline, "By ")
	byline = strings.TrimPrefix(byline, "by ")
	if byline == "" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(byline, " and ", ","), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return textutil.Dedup(out)
}

func licenseNotes(d types.ComplianceDecision) string {
	notes := fmt.Sprintf("Detected license %s; access %s", d.LicenseGuess, d.Access)
	if d.LicenseGuess == types.LicenseUnknown {
		notes += "; license requires manual review"
	}
	return notes
}

func citation(creators []string, title, institution, rawURL, retrieved string) string {
	var b strings.Builder
	if len(creators) > 0 {
		b.WriteString(strings.Join(creators, ", "))
		b.WriteString(". ")
	}
	b.WriteString(title)
	b.WriteString(". ")
	if institution != "" {
		b.WriteString(institution)
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "Retrieved %s from %s", retrieved[:10], rawURL)
	return textutil.Truncate(b.String(), citationLen)
}
