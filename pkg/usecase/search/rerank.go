package search

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
)

// HybridRerank fuses both rankings over an enlarged candidate pool, then
// re-scores every candidate with the cross-encoder and re-sorts. One scoring
// call covers the whole pool, so the pool stays bounded by
// RerankPoolFactor x topK and never the full corpus.
func (u *UseCase) HybridRerank(ctx context.Context, query string, opts Options) ([]*model.SearchResult, error) {
	if u.reranker == nil {
		return nil, goerr.New("reranker is not configured")
	}

	topK, rrfK := u.resolve(opts)

	candidates, err := u.fused(ctx, query, topK*u.cfg.RerankPoolFactor, rrfK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Summary
	}

	scores, err := u.reranker.Score(ctx, query, documents)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score candidates")
	}
	if len(scores) != len(candidates) {
		return nil, goerr.New("scorer returned mismatched score count",
			goerr.V("candidates", len(candidates)),
			goerr.V("scores", len(scores)))
	}

	for i, c := range candidates {
		c.Score = scores[i]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}
