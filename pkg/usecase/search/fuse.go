package search

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Hybrid runs lexical and vector retrieval concurrently and fuses both
// rankings with Reciprocal Rank Fusion. Fusing ranks instead of raw scores
// keeps either modality from dominating by scale alone.
func (u *UseCase) Hybrid(ctx context.Context, query string, opts Options) ([]*model.SearchResult, error) {
	topK, rrfK := u.resolve(opts)
	return u.fused(ctx, query, topK, rrfK)
}

func (u *UseCase) fused(ctx context.Context, query string, topK, rrfK int) ([]*model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "query text is empty")
	}
	if topK <= 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "top_k must be positive", goerr.V("top_k", topK))
	}

	// Over-fetch from each index; scores are not filtered here because
	// fusion only consumes rank positions.
	pool := topK * u.cfg.FusePoolFactor

	var lexical, vector []*model.ScoredSummary
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hits, err := u.store.FullTextSearch(ectx, query, pool, 0)
		if err != nil {
			return goerr.Wrap(err, "lexical search failed")
		}
		lexical = hits
		return nil
	})
	eg.Go(func() error {
		embedding, err := u.embedder.Embed(ectx, query)
		if err != nil {
			return goerr.Wrap(err, "failed to embed query")
		}
		hits, err := u.store.VectorSearch(ectx, embedding, pool, 0)
		if err != nil {
			return goerr.Wrap(err, "vector search failed")
		}
		vector = hits
		return nil
	})
	// Fusion needs both rankings. A failed leg fails the whole query
	// rather than silently halving the evidence.
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fused := fuseRRF([][]*model.ScoredSummary{lexical, vector}, rrfK, topK)
	return u.hydrate(ctx, fused)
}

type fusedCandidate struct {
	id    model.SummaryID
	score float64
	seen  int
}

// fuseRRF merges ranked lists by summing 1/(rrfK+rank) per list, rank being
// the 1-based position. An item absent from a list gets no contribution from
// it. Ties keep first-seen order across the input lists, so the result does
// not depend on which backend answered first.
func fuseRRF(lists [][]*model.ScoredSummary, rrfK, topK int) []*fusedCandidate {
	byID := make(map[model.SummaryID]*fusedCandidate)
	var order []*fusedCandidate

	for _, list := range lists {
		for rank, hit := range list {
			c, ok := byID[hit.SummaryID]
			if !ok {
				c = &fusedCandidate{id: hit.SummaryID, seen: len(order)}
				byID[hit.SummaryID] = c
				order = append(order, c)
			}
			c.score += 1.0 / float64(rrfK+rank+1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		return order[i].seen < order[j].seen
	})

	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

// hydrate resolves fused candidates back to their payload. Candidates that
// no longer resolve (deleted between search and hydration) are dropped.
func (u *UseCase) hydrate(ctx context.Context, fused []*fusedCandidate) ([]*model.SearchResult, error) {
	if len(fused) == 0 {
		return nil, nil
	}

	ids := make([]model.SummaryID, len(fused))
	for i, c := range fused {
		ids[i] = c.id
	}

	rows, err := u.store.GetSummaries(ctx, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hydrate candidates")
	}

	byID := make(map[model.SummaryID]*model.SearchResult, len(rows))
	for _, row := range rows {
		byID[row.SummaryID] = row
	}

	results := make([]*model.SearchResult, 0, len(fused))
	for _, c := range fused {
		row, ok := byID[c.id]
		if !ok {
			continue
		}
		row.Score = c.score
		results = append(results, row)
	}

	if dropped := len(fused) - len(results); dropped > 0 {
		logging.From(ctx).Warn("dropped candidates without payload", "count", dropped)
	}

	return results, nil
}
