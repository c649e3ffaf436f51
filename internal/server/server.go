// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the engine operations as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/curriculum-engine/internal/blueprint"
	"github.com/pdiddy/curriculum-engine/internal/discovery"
	"github.com/pdiddy/curriculum-engine/internal/engine"
	"github.com/pdiddy/curriculum-engine/internal/ingest"
	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/internal/store"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Server serves the API over an Engine.
type Server struct {
	engine *engine.Engine
}

// New returns a Server for e.
func New(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if logger.IsVerbose() {
		r.Use(gin.Logger())
	}

	r.GET("/healthz", s.Health)
	r.POST("/discover", s.Discover)
	r.POST("/ingest", s.Ingest)
	r.GET("/search", s.Search)
	r.GET("/resources/:id", s.GetResource)
	r.PATCH("/resources/:id/review", s.Review)
	r.POST("/blueprints", s.BuildBlueprint)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("serving on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DiscoverRequest is the POST /discover body.
type DiscoverRequest struct {
	Subject        string   `json:"subject" binding:"required"`
	Level          string   `json:"level"`
	TargetOutcomes []string `json:"targetOutcomes"`
	MaxResults     int      `json:"maxResults" binding:"gte=0"`
}

// DiscoverResponse is the POST /discover reply.
type DiscoverResponse struct {
	RunID         string                     `json:"runId"`
	Results       []types.DiscoveredResource `json:"results"`
	AdapterErrors []discovery.AdapterError   `json:"adapterErrors"`
	SnapshotPath  string                     `json:"snapshotPath"`
}

func (s *Server) Discover(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	run, err := s.engine.Discoverer.Discover(c.Request.Context(), types.DiscoveryRequest{
		Subject:        req.Subject,
		Level:          req.Level,
		TargetOutcomes: req.TargetOutcomes,
		MaxResults:     req.MaxResults,
	})
	if err != nil {
		internalError(c, "discover", err)
		return
	}
	results := run.Results
	if results == nil {
		results = []types.DiscoveredResource{}
	}
	c.JSON(http.StatusOK, DiscoverResponse{
		RunID:         run.ID,
		Results:       results,
		AdapterErrors: run.AdapterErrors(),
		SnapshotPath:  run.SnapshotPath,
	})
}

// IngestRequest is the POST /ingest body. URL may also be an arXiv id or
// a DOI.
type IngestRequest struct {
	URL     string `json:"url" binding:"required"`
	Subject string `json:"subject"`
	Level   string `json:"level"`
}

func (s *Server) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.engine.Pipeline.Ingest(c.Request.Context(), req.URL, ingest.Options{Subject: req.Subject, Level: req.Level})
	if err != nil {
		internalError(c, "ingest", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) Search(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	hits, err := s.engine.Store.Search(c.Request.Context(), c.Query("q"), limit)
	switch {
	case errors.Is(err, store.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		internalError(c, "search", err)
		return
	}
	if hits == nil {
		hits = []store.Hit{}
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

func (s *Server) GetResource(c *gin.Context) {
	r, err := s.engine.Store.GetByID(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	case err != nil:
		internalError(c, "get resource", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ReviewRequest is the PATCH /resources/:id/review body.
type ReviewRequest struct {
	Status   types.CurationStatus `json:"status" binding:"required,oneof=automated-discovery reviewed rejected"`
	Reviewer string               `json:"reviewer"`
	Notes    string               `json:"notes"`
}

func (s *Server) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := s.engine.Store.UpdateReview(c.Request.Context(), c.Param("id"), req.Status, req.Reviewer, req.Notes)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	case err != nil:
		internalError(c, "review", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// BlueprintRequest is the POST /blueprints body.
type BlueprintRequest struct {
	blueprint.Request
	SeedIngest int `json:"seedIngest" binding:"gte=0"`
}

func (s *Server) BuildBlueprint(c *gin.Context) {
	var req BlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	run, err := s.engine.BuildBlueprint(c.Request.Context(), req.Request, req.SeedIngest)
	switch {
	case errors.Is(err, blueprint.ErrNoResources):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case errors.Is(err, blueprint.ErrModeNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case err != nil:
		internalError(c, "build blueprint", err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}

func internalError(c *gin.Context, op string, err error) {
	logger.Warn("%s failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}
