// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine assembles the pipeline components from configuration and
// exposes the operations shared by the CLI and the HTTP server.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/curriculum-engine/internal/blueprint"
	"github.com/pdiddy/curriculum-engine/internal/compliance"
	"github.com/pdiddy/curriculum-engine/internal/discovery"
	"github.com/pdiddy/curriculum-engine/internal/fetch"
	"github.com/pdiddy/curriculum-engine/internal/ingest"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/secrets"
	"github.com/pdiddy/curriculum-engine/internal/store"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// Options override the defaults Open derives from configuration.
type Options struct {
	// Secrets are keyed by the names in package secrets.
	Secrets map[string]string

	// Client is shared by the fetcher, the discovery adapters, and the
	// identifier resolver. Nil builds one from http.timeoutSeconds.
	Client *http.Client

	// Registry replaces the default adapter set.
	Registry *discovery.Registry

	// Clock drives the rate limiter. Nil is the wall clock.
	Clock fetch.Clock
}

// Engine holds the wired components.
type Engine struct {
	Config     *types.Config
	Store      *store.Store
	Fetcher    *fetch.Fetcher
	Discoverer *discovery.Discoverer
	Pipeline   *ingest.Pipeline
	Blueprints *blueprint.Generator
	Log        *compliance.Log
}

// Open builds an Engine from cfg. The caller must Close it.
func Open(cfg *types.Config, opts Options) (*Engine, error) {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second}
	}

	contact := cfg.Discovery.ContactEmail
	if contact == "" {
		contact = opts.Secrets[secrets.OpenAlexEmail]
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	templates, err := blueprint.LoadTemplates(cfg.Blueprint.TemplatesPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	limiter := fetch.NewRateLimiter(cfg.RateLimit.RequestsPerDomainPerMinute, opts.Clock)
	fetcher := fetch.New(client, limiter, fetch.Options{
		UserAgent:        cfg.UserAgent,
		MaxDownloadBytes: int64(cfg.MaxDownloadSizeMB) << 20,
		Timeout:          time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	})

	registry := opts.Registry
	if registry == nil {
		registry = discovery.DefaultRegistry(discovery.Env{
			Client:             client,
			UserAgent:          cfg.UserAgent,
			ContactEmail:       contact,
			SemanticScholarKey: opts.Secrets[secrets.SemanticScholarAPIKey],
			NCBIKey:            opts.Secrets[secrets.NCBIAPIKey],
		})
	}

	log := compliance.NewLog(cfg.Storage.ComplianceLogPath)
	resolver := &ingest.Resolver{Client: client, UserAgent: cfg.UserAgent, ContactEmail: contact}
	pipeline := ingest.New(ingest.Config{
		AllowedDomains:          cfg.AllowedDomains,
		BlockedDomains:          cfg.BlockedDomains,
		DoNotIngestPatternsPath: cfg.DoNotIngestPatternsPath,
		RawHTMLDir:              cfg.Storage.RawHTMLDir,
		RawPDFDir:               cfg.Storage.RawPDFDir,
		ExtractedTextDir:        cfg.Storage.ExtractedTextDir,
		SeedConcurrency:         cfg.Discovery.SeedConcurrency,
	}, fetcher, st, log, resolver)

	return &Engine{
		Config:     cfg,
		Store:      st,
		Fetcher:    fetcher,
		Discoverer: discovery.New(registry, cfg.Storage.DiscoveryDir, cfg.Discovery.MaxResults),
		Pipeline:   pipeline,
		Blueprints: blueprint.New(st, cfg.Storage.BlueprintDir, templates),
		Log:        log,
	}, nil
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.Store.Close()
}

// BlueprintRun is the outcome of BuildBlueprint.
type BlueprintRun struct {
	Blueprint *types.CourseBlueprint `json:"blueprint"`
	Artifacts *blueprint.Artifacts   `json:"artifacts"`
	Seeded    []*ingest.Result       `json:"seeded,omitempty"`
}

// BuildBlueprint optionally seeds the store from the top seedN discovery
// results at or above discovery.minScore, then builds and writes the
// blueprint.
func (e *Engine) BuildBlueprint(ctx context.Context, req blueprint.Request, seedN int) (*BlueprintRun, error) {
	run := &BlueprintRun{}
	if seedN > 0 {
		logger.Section("seed ingest")
		disc, err := e.Discoverer.Discover(ctx, types.DiscoveryRequest{
			Subject:        req.Subject,
			Level:          req.Level,
			TargetOutcomes: req.Outcomes,
		})
		if err != nil {
			return nil, fmt.Errorf("discovering seed candidates: %w", err)
		}
		seeded, err := e.Pipeline.SeedFromDiscovery(ctx, disc.Results, e.Config.Discovery.MinScore, seedN,
			ingest.Options{Subject: req.Subject, Level: req.Level})
		if err != nil {
			return nil, fmt.Errorf("seeding: %w", err)
		}
		run.Seeded = seeded
	}

	logger.Section("blueprint")
	bp, err := e.Blueprints.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	artifacts, err := e.Blueprints.Write(bp)
	if err != nil {
		return nil, err
	}
	run.Blueprint = bp
	run.Artifacts = artifacts
	return run, nil
}
