package project

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
)

// GetLatest returns the project's current summary for resuming work
func (u *UseCase) GetLatest(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error) {
	if id == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "project ID is required")
	}
	return u.store.GetLatestSummary(ctx, id)
}

// GetBySummary resolves the project that owns the given summary
func (u *UseCase) GetBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error) {
	if id == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "summary ID is required")
	}
	return u.store.GetProjectBySummary(ctx, id)
}
