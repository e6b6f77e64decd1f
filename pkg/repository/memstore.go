package repository

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
)

// MemStore is an in-memory GraphStore for tests and local development. It
// preserves the same invariants as the Neo4j store: one latest summary per
// project and an append-only predecessor chain. Lexical scoring is a plain
// term-frequency count, which is enough to produce deterministic rankings
// for a test corpus; it does not try to be BM25.
type MemStore struct {
	mu        sync.RWMutex
	projects  map[model.ProjectID]*model.Project
	summaries map[model.SummaryID]*model.Summary
	owner     map[model.SummaryID]model.ProjectID
	latest    map[model.ProjectID]model.SummaryID
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		projects:  make(map[model.ProjectID]*model.Project),
		summaries: make(map[model.SummaryID]*model.Summary),
		owner:     make(map[model.SummaryID]model.ProjectID),
		latest:    make(map[model.ProjectID]model.SummaryID),
	}
}

func (x *MemStore) UpsertProjectChain(ctx context.Context, update *ChainUpdate) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.summaries[update.SummaryID]; exists {
		return goerr.New("summary already exists", goerr.V("summary_id", update.SummaryID))
	}

	now := time.Now()
	project, ok := x.projects[update.ProjectID]
	if !ok {
		project = &model.Project{ID: update.ProjectID}
		x.projects[update.ProjectID] = project
	}
	project.Name = update.Name
	project.Question = update.Question
	project.UpdatedAt = now

	summary := &model.Summary{
		ID:        update.SummaryID,
		Text:      update.SummaryText,
		Embedding: append([]float32(nil), update.Embedding...),
		CreatedAt: now,
		Previous:  x.latest[update.ProjectID],
	}
	x.summaries[update.SummaryID] = summary
	x.owner[update.SummaryID] = update.ProjectID
	x.latest[update.ProjectID] = update.SummaryID

	return nil
}

func (x *MemStore) GetProjectBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	projectID, ok := x.owner[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "no project owns summary", goerr.V("summary_id", id))
	}

	project := *x.projects[projectID]
	return &project, nil
}

func (x *MemStore) GetLatestSummary(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	project, ok := x.projects[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "no such project", goerr.V("project_id", id))
	}

	summaryID, ok := x.latest[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "no latest summary", goerr.V("project_id", id))
	}

	return &model.LatestSummary{
		ProjectID: project.ID,
		Question:  project.Question,
		Summary:   x.summaries[summaryID].Text,
		SummaryID: summaryID,
	}, nil
}

func (x *MemStore) GetSummaries(ctx context.Context, ids []model.SummaryID) ([]*model.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]*model.SearchResult, 0, len(ids))
	for _, id := range ids {
		summary, ok := x.summaries[id]
		if !ok {
			continue
		}
		project := x.projects[x.owner[id]]
		results = append(results, &model.SearchResult{
			ProjectID:   project.ID,
			ProjectName: project.Name,
			Question:    project.Question,
			Summary:     summary.Text,
			SummaryID:   id,
		})
	}
	return results, nil
}

func (x *MemStore) DeleteProject(ctx context.Context, id model.ProjectID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for summaryID, projectID := range x.owner {
		if projectID == id {
			delete(x.summaries, summaryID)
			delete(x.owner, summaryID)
		}
	}
	delete(x.latest, id)
	delete(x.projects, id)

	return nil
}

func (x *MemStore) FullTextSearch(ctx context.Context, query string, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	var hits []*model.ScoredSummary
	for _, summary := range x.summaries {
		tokens := strings.Fields(strings.ToLower(summary.Text))
		var score float64
		for _, term := range terms {
			for _, token := range tokens {
				if token == term {
					score++
				}
			}
		}
		if score > 0 && score >= minScore {
			hits = append(hits, &model.ScoredSummary{
				SummaryID: summary.ID,
				Text:      summary.Text,
				Score:     score,
			})
		}
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (x *MemStore) VectorSearch(ctx context.Context, embedding []float32, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []*model.ScoredSummary
	for _, summary := range x.summaries {
		if len(summary.Embedding) == 0 {
			continue
		}
		score := cosineSimilarity(embedding, summary.Embedding)
		if score >= minScore {
			hits = append(hits, &model.ScoredSummary{
				SummaryID: summary.ID,
				Text:      summary.Text,
				Score:     score,
			})
		}
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (x *MemStore) Close(ctx context.Context) error {
	return nil
}

// GetSummary returns a copy of the stored summary node. Test helper for
// inspecting the predecessor chain.
func (x *MemStore) GetSummary(id model.SummaryID) (*model.Summary, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	summary, ok := x.summaries[id]
	if !ok {
		return nil, false
	}
	copied := *summary
	return &copied, true
}

// SummaryChain walks the predecessor links from the latest summary of the
// project, most-recent-first.
func (x *MemStore) SummaryChain(id model.ProjectID) []model.SummaryID {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var chain []model.SummaryID
	for cursor := x.latest[id]; cursor != ""; {
		chain = append(chain, cursor)
		summary, ok := x.summaries[cursor]
		if !ok {
			break
		}
		cursor = summary.Previous
	}
	return chain
}

// sortHits orders by score descending with summary ID as a deterministic
// tie-break, standing in for the backend's own stable ordering.
func sortHits(hits []*model.ScoredSummary) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].SummaryID < hits[j].SummaryID
	})
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
