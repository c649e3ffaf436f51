// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/curriculum-engine/internal/logger"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// SeedFromDiscovery ingests up to n of the highest-scoring candidates whose
// score is at least minScore. Ingests run concurrently, bounded by the
// configured seed concurrency. Results follow candidate rank order.
func (p *Pipeline) SeedFromDiscovery(ctx context.Context, candidates []types.DiscoveredResource, minScore float64, n int, opts Options) ([]*Result, error) {
	eligible := make([]types.DiscoveredResource, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= minScore {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})
	if n >= 0 && len(eligible) > n {
		eligible = eligible[:n]
	}
	logger.Info("seed: ingesting %d of %d candidates (minScore %.2f)", len(eligible), len(candidates), minScore)

	results := make([]*Result, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.SeedConcurrency)
	for i, c := range eligible {
		g.Go(func() error {
			r, err := p.Ingest(gctx, c.URL, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
