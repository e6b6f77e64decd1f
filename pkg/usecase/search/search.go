package search

import (
	"github.com/m-mizutani/recollect/pkg/adapter"
	"github.com/m-mizutani/recollect/pkg/repository"
)

// Config holds retrieval tuning. Over-fetching before truncation improves
// fusion recall; the exact defaults came out of manual tuning and carry no
// deeper rationale.
type Config struct {
	// TopK is the default result count when a query does not specify one
	TopK int

	// RRFK dampens the influence of rank differences far down the list
	RRFK int

	// FusePoolFactor is the over-fetch multiplier applied to each index
	// before fusion
	FusePoolFactor int

	// RerankPoolFactor is the fused-pool multiplier applied before the
	// cross-encoder pass
	RerankPoolFactor int

	// SemanticMinScore is the similarity floor for plain semantic search.
	// Fusion ignores it: only rank position matters there.
	SemanticMinScore float64

	// SemanticTopK is the default result count for plain semantic search
	SemanticTopK int
}

// DefaultConfig returns the standard retrieval tuning
func DefaultConfig() Config {
	return Config{
		TopK:             197,
		RRFK:             60,
		FusePoolFactor:   2,
		RerankPoolFactor: 3,
		SemanticMinScore: 0.35,
		SemanticTopK:     9,
	}
}

// UseCase provides hybrid retrieval over the knowledge graph
type UseCase struct {
	store    repository.GraphStore
	embedder adapter.Embedder
	reranker adapter.Reranker
	cfg      Config
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithConfig overrides the retrieval tuning
func WithConfig(cfg Config) Option {
	return func(u *UseCase) {
		u.cfg = cfg
	}
}

// WithReranker enables the cross-encoder reranking stage
func WithReranker(reranker adapter.Reranker) Option {
	return func(u *UseCase) {
		u.reranker = reranker
	}
}

// New creates a new search UseCase instance
func New(store repository.GraphStore, embedder adapter.Embedder, opts ...Option) *UseCase {
	u := &UseCase{
		store:    store,
		embedder: embedder,
		cfg:      DefaultConfig(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Options overrides per-query tuning; zero values fall back to the
// configured defaults
type Options struct {
	TopK int
	RRFK int
}

func (u *UseCase) resolve(opts Options) (topK, rrfK int) {
	topK = opts.TopK
	if topK == 0 {
		topK = u.cfg.TopK
	}
	rrfK = opts.RRFK
	if rrfK == 0 {
		rrfK = u.cfg.RRFK
	}
	return topK, rrfK
}
