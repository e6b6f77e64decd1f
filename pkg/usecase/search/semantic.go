package search

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
)

// Semantic runs plain vector similarity search with the configured
// similarity floor, without lexical fusion.
func (u *UseCase) Semantic(ctx context.Context, query string, topK int) ([]*model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "query text is empty")
	}
	if topK <= 0 {
		topK = u.cfg.SemanticTopK
	}

	embedding, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	hits, err := u.store.VectorSearch(ctx, embedding, topK, u.cfg.SemanticMinScore)
	if err != nil {
		return nil, goerr.Wrap(err, "vector search failed")
	}
	if len(hits) == 0 {
		return nil, nil
	}

	candidates := make([]*fusedCandidate, len(hits))
	for i, hit := range hits {
		candidates[i] = &fusedCandidate{id: hit.SummaryID, score: hit.Score, seen: i}
	}

	return u.hydrate(ctx, candidates)
}
