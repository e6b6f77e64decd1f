package search_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
)

// stubReranker scores each document by a fixed lookup on its text
type stubReranker struct {
	scores map[string]float64
	err    error
	called int
}

func (s *stubReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	s.called++
	if s.err != nil {
		return nil, s.err
	}
	scores := make([]float64, len(documents))
	for i, doc := range documents {
		scores[i] = s.scores[doc]
	}
	return scores, nil
}

func TestHybridRerankOrdersByCrossScore(t *testing.T) {
	// Fusion ranks a first, but the cross-encoder prefers c
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 5), hit("b", 3), hit("c", 1)},
		vector:  []*model.ScoredSummary{hit("a", 0.9), hit("c", 0.6)},
		rows:    rowsFor("a", "b", "c"),
	}
	reranker := &stubReranker{scores: map[string]float64{
		"summary a": 0.2,
		"summary b": 0.5,
		"summary c": 0.95,
	}}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}}, search.WithReranker(reranker))

	results, err := uc.HybridRerank(context.Background(), "query", search.Options{TopK: 2})
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
	gt.Equal(t, results[0].SummaryID, model.SummaryID("c"))
	gt.Equal(t, results[0].Score, 0.95)
	gt.Equal(t, results[1].SummaryID, model.SummaryID("b"))
}

func TestHybridRerankEmptyCandidates(t *testing.T) {
	store := &stubStore{rows: rowsFor()}
	reranker := &stubReranker{}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}}, search.WithReranker(reranker))

	results, err := uc.HybridRerank(context.Background(), "query", search.Options{TopK: 5})
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
	gt.Equal(t, reranker.called, 0)
}

func TestHybridRerankScorerFailure(t *testing.T) {
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 1)},
		rows:    rowsFor("a"),
	}
	reranker := &stubReranker{err: goerr.New("scorer unreachable")}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}}, search.WithReranker(reranker))

	_, err := uc.HybridRerank(context.Background(), "query", search.Options{TopK: 5})
	gt.Error(t, err)
}

func TestHybridRerankWithoutReranker(t *testing.T) {
	store := &stubStore{rows: rowsFor()}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	_, err := uc.HybridRerank(context.Background(), "query", search.Options{TopK: 5})
	gt.Error(t, err)
}
