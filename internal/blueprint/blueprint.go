// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blueprint builds course blueprints from stored resources: four
// modules of two lessons each, with citations drawn from the store.
package blueprint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// MaxCitations caps the resources cited by one module.
const MaxCitations = 3

var (
	// ErrNoResources is returned when no stored resource matches the
	// requested subject and level.
	ErrNoResources = errors.New("no stored resources match")

	// ErrModeNotImplemented is returned for generation modes other than
	// manual.
	ErrModeNotImplemented = errors.New("generation mode not implemented")
)

// Lister reads candidate resources. *store.Store satisfies it.
type Lister interface {
	ListBySubjectLevel(ctx context.Context, subject, level string) ([]types.Resource, error)
}

// Request describes the course to build.
type Request struct {
	Subject  string               `json:"subject" binding:"required"`
	Level    string               `json:"level"`
	Outcomes []string             `json:"outcomes"`
	Mode     types.GenerationMode `json:"mode"`
}

// Generator builds and writes blueprints.
type Generator struct {
	store     Lister
	dir       string
	templates []Template
	now       func() time.Time
}

// New returns a Generator writing under dir. templates are consulted before
// the built-in ones.
func New(st Lister, dir string, templates []Template) *Generator {
	return &Generator{store: st, dir: dir, templates: templates, now: time.Now}
}

// Build assembles a blueprint for req from the stored resources.
func (g *Generator) Build(ctx context.Context, req Request) (*types.CourseBlueprint, error) {
	subject := strings.TrimSpace(req.Subject)
	level := strings.TrimSpace(req.Level)
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	switch req.Mode {
	case "", types.ModeManual:
	case types.ModeBYOKey:
		return nil, fmt.Errorf("%w: %s", ErrModeNotImplemented, req.Mode)
	default:
		return nil, fmt.Errorf("unknown generation mode %q", req.Mode)
	}

	pool, err := g.store.ListBySubjectLevel(ctx, subject, level)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w subject %q at level %q; ingest resources first", ErrNoResources, subject, level)
	}

	tmpl := selectTemplate(g.templates, subject)
	logger.Info("blueprint: %s/%s using %s template with %d resources", subject, level, tmpl.Name, len(pool))

	outcomes := textutil.Dedup(req.Outcomes)
	if len(outcomes) == 0 {
		outcomes = append([]string{}, tmpl.Outcomes...)
	}

	bp := &types.CourseBlueprint{
		ID:            textutil.Slug(subject + " " + level),
		Subject:       subject,
		Level:         level,
		Outcomes:      outcomes,
		Prerequisites: nonNil(tmpl.Prerequisites),
		Modules:       make([]types.ModuleSpec, 0, len(tmpl.Modules)),
		GeneratedAt:   g.now().UTC().Format(time.RFC3339),
		Mode:          types.ModeManual,
	}

	var resourceIDs []string
	for i, mt := range tmpl.Modules {
		cites := selectResources(pool, mt.Keywords)
		m := buildModule(i, mt, cites)
		bp.Modules = append(bp.Modules, m)
		resourceIDs = append(resourceIDs, m.CitationResourceIDs...)
	}
	bp.ResourceIDs = nonNil(textutil.Dedup(resourceIDs))
	return bp, nil
}

// selectResources returns up to MaxCitations resources whose title or
// topic tags contain a keyword, falling back to the whole pool.
func selectResources(pool []types.Resource, keywords []string) []types.Resource {
	var matched []types.Resource
	for _, r := range pool {
		hay := strings.ToLower(r.Title + " " + strings.Join(r.TopicTags, " "))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" && strings.Contains(hay, kw) {
				matched = append(matched, r)
				break
			}
		}
	}
	if len(matched) == 0 {
		matched = pool
	}

	seen := make(map[string]bool)
	out := make([]types.Resource, 0, MaxCitations)
	for _, r := range matched {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
		if len(out) == MaxCitations {
			break
		}
	}
	return out
}

func buildModule(i int, mt ModuleTemplate, cites []types.Resource) types.ModuleSpec {
	id := fmt.Sprintf("m%d", i+1)
	prereqs := []string{}
	if i > 0 {
		prereqs = append(prereqs, fmt.Sprintf("m%d", i))
	}

	ids := make([]string, 0, len(cites))
	refs := make([]types.SourceRef, 0, len(cites))
	for _, r := range cites {
		ids = append(ids, r.ID)
		refs = append(refs, types.SourceRef{ResourceID: r.ID, Title: r.Title, URL: r.URL, License: r.License})
	}

	half := (len(mt.Objectives) + 1) / 2
	first, second := mt.Objectives[:half], mt.Objectives[half:]
	if len(second) == 0 {
		second = mt.Objectives
	}

	return types.ModuleSpec{
		ModuleID:      id,
		Title:         mt.Title,
		Prerequisites: prereqs,
		Objectives:    nonNil(mt.Objectives),
		Lessons: []types.LessonSpec{
			{
				LessonID:               id + "-l1",
				Title:                  "Conceptual grounding: " + mt.Title,
				Objectives:             append([]string{}, first...),
				RecommendedResourceIDs: append([]string{}, ids...),
				PracticeSpecs: []string{
					"Concept-check questions on " + strings.ToLower(mt.Title),
					"Annotated reading of the cited sources",
				},
				MasteryCheckSpecs: []string{"Explain each lesson objective in your own words"},
				SourceMap:         append([]types.SourceRef{}, refs...),
			},
			{
				LessonID:               id + "-l2",
				Title:                  "Problem-solving application: " + mt.Title,
				Objectives:             append([]string{}, second...),
				RecommendedResourceIDs: append([]string{}, ids...),
				PracticeSpecs: []string{
					"Worked examples followed by independent problems",
					"Error analysis of a flawed solution",
				},
				MasteryCheckSpecs: []string{"Solve an unseen problem covering every lesson objective"},
				SourceMap:         append([]types.SourceRef{}, refs...),
			},
		},
		ProjectSpecs:        nonNil(mt.Projects),
		CitationResourceIDs: ids,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
