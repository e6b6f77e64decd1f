package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/repository"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
)

// stubStore serves canned ranked lists so fusion can be tested against
// exact rank positions
type stubStore struct {
	lexical    []*model.ScoredSummary
	vector     []*model.ScoredSummary
	lexicalErr error
	vectorErr  error
	rows       map[model.SummaryID]*model.SearchResult
}

func (s *stubStore) UpsertProjectChain(ctx context.Context, update *repository.ChainUpdate) error {
	return goerr.New("not implemented")
}

func (s *stubStore) GetProjectBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error) {
	return nil, model.ErrNotFound
}

func (s *stubStore) GetLatestSummary(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error) {
	return nil, model.ErrNotFound
}

func (s *stubStore) GetSummaries(ctx context.Context, ids []model.SummaryID) ([]*model.SearchResult, error) {
	var results []*model.SearchResult
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			copied := *row
			results = append(results, &copied)
		}
	}
	return results, nil
}

func (s *stubStore) DeleteProject(ctx context.Context, id model.ProjectID) error {
	return nil
}

func (s *stubStore) FullTextSearch(ctx context.Context, query string, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	if s.lexicalErr != nil {
		return nil, s.lexicalErr
	}
	if limit < len(s.lexical) {
		return s.lexical[:limit], nil
	}
	return s.lexical, nil
}

func (s *stubStore) VectorSearch(ctx context.Context, embedding []float32, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	if s.vectorErr != nil {
		return nil, s.vectorErr
	}
	if limit < len(s.vector) {
		return s.vector[:limit], nil
	}
	return s.vector, nil
}

func (s *stubStore) Close(ctx context.Context) error {
	return nil
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func hit(id string, score float64) *model.ScoredSummary {
	return &model.ScoredSummary{
		SummaryID: model.SummaryID(id),
		Text:      "summary " + id,
		Score:     score,
	}
}

func row(id string) *model.SearchResult {
	return &model.SearchResult{
		ProjectID:   model.ProjectID("project-" + id),
		ProjectName: "Project " + id,
		Summary:     "summary " + id,
		SummaryID:   model.SummaryID(id),
	}
}

func rowsFor(ids ...string) map[model.SummaryID]*model.SearchResult {
	rows := make(map[model.SummaryID]*model.SearchResult)
	for _, id := range ids {
		rows[model.SummaryID(id)] = row(id)
	}
	return rows
}

func TestHybridFusionOrder(t *testing.T) {
	// b appears in both lists, so 1/61 + 1/61 must beat a's 1/61 and c's 1/62
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 12.5), hit("b", 3.1)},
		vector:  []*model.ScoredSummary{hit("b", 0.93), hit("c", 0.72)},
		rows:    rowsFor("a", "b", "c"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 10, RRFK: 60})
	gt.NoError(t, err)
	gt.A(t, results).Length(3)
	gt.Equal(t, results[0].SummaryID, model.SummaryID("b"))
	gt.Equal(t, results[1].SummaryID, model.SummaryID("a"))
	gt.Equal(t, results[2].SummaryID, model.SummaryID("c"))
}

func TestHybridDeterminism(t *testing.T) {
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 5), hit("b", 4), hit("c", 3)},
		vector:  []*model.ScoredSummary{hit("d", 0.9), hit("b", 0.8), hit("a", 0.7)},
		rows:    rowsFor("a", "b", "c", "d"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	first, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 10})
	gt.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 10})
		gt.NoError(t, err)
		gt.A(t, again).Length(len(first))
		for j := range first {
			gt.Equal(t, again[j].SummaryID, first[j].SummaryID)
		}
	}
}

func TestHybridFairness(t *testing.T) {
	// x ranked 1st in both lists must outrank items ranked 1st in only one
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("x", 9), hit("y", 1)},
		vector:  []*model.ScoredSummary{hit("x", 0.99), hit("z", 0.5)},
		rows:    rowsFor("x", "y", "z"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 10})
	gt.NoError(t, err)
	gt.A(t, results).Longer(1)
	gt.Equal(t, results[0].SummaryID, model.SummaryID("x"))
	gt.True(t, results[0].Score > results[1].Score)
}

func TestHybridTruncation(t *testing.T) {
	var lexical, vector []*model.ScoredSummary
	ids := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("s%02d", i)
		ids = append(ids, id)
		lexical = append(lexical, hit(id, float64(20-i)))
		vector = append(vector, hit(id, 1.0/float64(i+1)))
	}
	store := &stubStore{lexical: lexical, vector: vector, rows: rowsFor(ids...)}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 3})
	gt.NoError(t, err)
	gt.A(t, results).Length(3)
}

func TestHybridNoPadding(t *testing.T) {
	// 3 matches with top_k=5 returns exactly 3 items
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 2), hit("b", 1)},
		vector:  []*model.ScoredSummary{hit("b", 0.9), hit("c", 0.4)},
		rows:    rowsFor("a", "b", "c"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 5})
	gt.NoError(t, err)
	gt.A(t, results).Length(3)
}

func TestHybridEmptyQuery(t *testing.T) {
	store := &stubStore{rows: rowsFor()}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	_, err := uc.Hybrid(context.Background(), "  ", search.Options{TopK: 5})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestHybridFailingLegFailsQuery(t *testing.T) {
	store := &stubStore{
		lexicalErr: goerr.New("index unavailable"),
		vector:     []*model.ScoredSummary{hit("a", 0.9)},
		rows:       rowsFor("a"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	_, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 5})
	gt.Error(t, err)
}

func TestHybridEmbedFailureFailsQuery(t *testing.T) {
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 1)},
		rows:    rowsFor("a"),
	}
	uc := search.New(store, &stubEmbedder{err: goerr.New("embedding unavailable")})

	_, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 5})
	gt.Error(t, err)
}

func TestHybridDropsUnresolvedCandidates(t *testing.T) {
	// b is fused but cannot be hydrated; it is dropped, not an error
	store := &stubStore{
		lexical: []*model.ScoredSummary{hit("a", 2), hit("b", 1)},
		vector:  []*model.ScoredSummary{hit("b", 0.9), hit("c", 0.4)},
		rows:    rowsFor("a", "c"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Hybrid(context.Background(), "query", search.Options{TopK: 5})
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
	for _, r := range results {
		gt.NotEqual(t, r.SummaryID, model.SummaryID("b"))
	}
}

func TestSemanticSearch(t *testing.T) {
	store := &stubStore{
		vector: []*model.ScoredSummary{hit("a", 0.92), hit("b", 0.57)},
		rows:   rowsFor("a", "b"),
	}
	uc := search.New(store, &stubEmbedder{vec: []float32{1, 0}})

	results, err := uc.Semantic(context.Background(), "query", 5)
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
	gt.Equal(t, results[0].SummaryID, model.SummaryID("a"))
	gt.Equal(t, results[0].Score, 0.92)
}
