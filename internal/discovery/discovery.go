// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discovery finds candidate open educational resources for a
// subject. A Registry of adapters (static catalogs and live APIs) is fanned
// out concurrently; results are deduplicated by URL, scored, ranked, and
// persisted as a per-subject snapshot.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/scoring"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// DefaultMaxResults is used when neither the request nor the Discoverer
// sets a result budget.
const DefaultMaxResults = 20

// Adapter produces unscored candidates for a subject from one source.
type Adapter interface {
	Name() string

	// Applies reports whether the adapter should run for subject.
	Applies(subject string) bool

	Discover(ctx context.Context, req types.DiscoveryRequest) ([]types.DiscoveredResource, error)
}

// AdapterResult is the outcome of one adapter run. A failed adapter has a
// non-nil Err and no candidates; it never fails the run.
type AdapterResult struct {
	Name       string
	Candidates []types.DiscoveredResource
	Err        error
}

// Registry holds adapters in a fixed order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry returns a registry over adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Adapters returns every registered adapter.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// Select returns the adapters whose predicate accepts subject, in
// registration order.
func (r *Registry) Select(subject string) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if a.Applies(subject) {
			out = append(out, a)
		}
	}
	return out
}

// Env carries what live adapters need to talk to remote APIs.
type Env struct {
	Client    *http.Client
	UserAgent string

	// ContactEmail is sent to OpenAlex and NCBI as a polite-pool contact.
	ContactEmail string

	SemanticScholarKey string
	NCBIKey            string
}

func (e Env) headers(extra ...string) map[string]string {
	h := map[string]string{"User-Agent": e.UserAgent}
	for i := 0; i+1 < len(extra); i += 2 {
		h[extra[i]] = extra[i+1]
	}
	return h
}

// DefaultRegistry returns the standard adapter set.
func DefaultRegistry(env Env) *Registry {
	return NewRegistry(
		NewOpenStax(env),
		NewCatalog("mit-ocw", mitOCWCatalog),
		NewCatalog("open-textbook-library", openTextbookCatalog),
		NewCatalog("libretexts", libreTextsCatalog),
		&OpenAlex{Env: env},
		&Arxiv{Env: env},
		&SemanticScholar{Env: env},
		&PubMedCentral{Env: env},
		&EuropePMC{Env: env},
	)
}

var biomedicalPattern = regexp.MustCompile(`(?i)\b(bio\w*|medic\w*|clinic\w*|health|anatomy|physiolog\w*|genetic\w*|genom\w*|neuro\w*|pharma\w*|immun\w*|epidemiolog\w*|nursing|patholog\w*|molecular|cell(ular)?|microbio\w*|biochem\w*|disease\w*|public health)\b`)

// IsBiomedical reports whether subject looks like a biomedical topic.
func IsBiomedical(subject string) bool {
	return biomedicalPattern.MatchString(subject)
}

// Run is the result of one discovery request.
type Run struct {
	ID           string
	Request      types.DiscoveryRequest
	Results      []types.DiscoveredResource
	Adapters     []AdapterResult
	SnapshotPath string
	GeneratedAt  time.Time
}

// Discoverer runs the registry and persists snapshots.
type Discoverer struct {
	registry    *Registry
	snapshotDir string
	maxResults  int
	now         func() time.Time
}

// New returns a Discoverer writing snapshots under snapshotDir. maxResults
// is the default budget when a request does not set one.
func New(registry *Registry, snapshotDir string, maxResults int) *Discoverer {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Discoverer{
		registry:    registry,
		snapshotDir: snapshotDir,
		maxResults:  maxResults,
		now:         time.Now,
	}
}

// Discover selects adapters for the subject, runs them concurrently,
// deduplicates by URL, scores, ranks, truncates, and writes the snapshot.
func (d *Discoverer) Discover(ctx context.Context, req types.DiscoveryRequest) (*Run, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Level = strings.TrimSpace(req.Level)
	if req.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = d.maxResults
	}

	selected := d.registry.Select(req.Subject)
	logger.Section("Discovery")
	logger.Info("subject=%q level=%q adapters=%d", req.Subject, req.Level, len(selected))

	results := runAdapters(ctx, selected, req)

	var all []types.DiscoveredResource
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("adapter %s failed: %v", r.Name, r.Err)
			continue
		}
		logger.Debug("adapter %s returned %d candidates", r.Name, len(r.Candidates))
		all = append(all, r.Candidates...)
	}

	ranked := Rank(Dedup(all), req)
	if len(ranked) > req.MaxResults {
		ranked = ranked[:req.MaxResults]
	}

	run := &Run{
		ID:          uuid.NewString(),
		Request:     req,
		Results:     ranked,
		Adapters:    results,
		GeneratedAt: d.now().UTC(),
	}
	path, err := WriteSnapshot(d.snapshotDir, run)
	if err != nil {
		return nil, err
	}
	run.SnapshotPath = path
	logger.Info("discovery %s: %d results written to %s", run.ID, len(ranked), path)
	return run, nil
}

// runAdapters fans out to every adapter. Each goroutine owns one slot of
// the result slice and never returns an error to the group.
func runAdapters(ctx context.Context, adapters []Adapter, req types.DiscoveryRequest) []AdapterResult {
	results := make([]AdapterResult, len(adapters))
	var g errgroup.Group
	for i, a := range adapters {
		g.Go(func() error {
			candidates, err := discoverOne(ctx, a, req)
			if err != nil {
				candidates = nil
			}
			for j := range candidates {
				if candidates[j].Source == "" {
					candidates[j].Source = a.Name()
				}
			}
			results[i] = AdapterResult{Name: a.Name(), Candidates: candidates, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// discoverOne runs a single adapter, turning a panic into its error.
func discoverOne(ctx context.Context, a Adapter, req types.DiscoveryRequest) (candidates []types.DiscoveredResource, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidates, err = nil, fmt.Errorf("adapter %s panicked: %v", a.Name(), r)
		}
	}()
	return a.Discover(ctx, req)
}

// Dedup drops candidates whose URL, trailing slash stripped, was already
// seen. The first occurrence wins.
func Dedup(candidates []types.DiscoveredResource) []types.DiscoveredResource {
	seen := make(map[string]bool, len(candidates))
	out := make([]types.DiscoveredResource, 0, len(candidates))
	for _, c := range candidates {
		key := httputil.NormalizeURL(c.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Rank scores every candidate and sorts by score, highest first. Ties keep
// their input order.
func Rank(candidates []types.DiscoveredResource, req types.DiscoveryRequest) []types.DiscoveredResource {
	out := make([]types.DiscoveredResource, len(candidates))
	for i, c := range candidates {
		out[i] = scoring.Apply(c, req)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// matchesSubject reports whether any subject term occurs in text. A subject
// with no usable terms matches on the whole lowercase subject.
func matchesSubject(subject, text string) bool {
	text = strings.ToLower(text)
	terms := subjectTerms(subject)
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
