package repository

import (
	"context"

	"github.com/m-mizutani/recollect/pkg/model"
)

// ChainUpdate is the input of the atomic version-chain update. Both IDs are
// assigned by the caller before the transaction starts.
type ChainUpdate struct {
	ProjectID   model.ProjectID
	Name        string
	Question    string
	SummaryID   model.SummaryID
	SummaryText string
	Embedding   []float32
}

// GraphStore defines the property-graph persistence used by recollect
type GraphStore interface {
	// UpsertProjectChain applies the version-chain update as one atomic unit
	// of work: upsert the project node, detach the current latest edge if
	// any, create the new summary, link it as both latest and historical,
	// and chain it back to the previous latest. Either all steps apply or
	// none do; a reader never observes a project with two latest summaries.
	UpsertProjectChain(ctx context.Context, update *ChainUpdate) error

	// GetProjectBySummary resolves the project that owns the given summary
	GetProjectBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error)

	// GetLatestSummary returns the current summary of the project
	GetLatestSummary(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error)

	// GetSummaries hydrates summary IDs into results carrying the owning
	// project. IDs that no longer resolve are omitted; order is unspecified.
	GetSummaries(ctx context.Context, ids []model.SummaryID) ([]*model.SearchResult, error)

	// DeleteProject removes the project and every summary reachable from
	// it. Deleting an unknown project is not an error.
	DeleteProject(ctx context.Context, id model.ProjectID) error

	// FullTextSearch queries the lexical index, ordered by score descending.
	// A missing index or empty corpus yields an empty result, not an error.
	FullTextSearch(ctx context.Context, query string, limit int, minScore float64) ([]*model.ScoredSummary, error)

	// VectorSearch queries the vector index with the given query embedding,
	// filtered to similarity >= minScore
	VectorSearch(ctx context.Context, embedding []float32, limit int, minScore float64) ([]*model.ScoredSummary, error)

	Close(ctx context.Context) error
}
