package project

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/repository"
	"github.com/m-mizutani/recollect/pkg/utils/logging"
)

// UpsertInput describes a new summary to append to a project's history.
// ProjectID is optional; a fresh one is generated when empty.
type UpsertInput struct {
	ProjectID model.ProjectID
	Name      string
	Question  string
	Summary   string
}

type UpsertOutput struct {
	ProjectID model.ProjectID
	Name      string
	SummaryID model.SummaryID
}

// Upsert appends a new summary to the project history. The previous latest
// summary is kept and chained behind the new one; the whole update is a
// single store transaction.
func (u *UseCase) Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error) {
	if input.Name == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "project name is required")
	}
	if input.Summary == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "summary text is required")
	}

	projectID := input.ProjectID
	if projectID == "" {
		projectID = model.NewProjectID()
	}
	summaryID := model.NewSummaryID()

	// The question is prepended so the embedding carries the intent, not
	// just the summary body.
	embedding, err := u.embedder.Embed(ctx, input.Question+"\n"+input.Summary)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed summary")
	}

	update := &repository.ChainUpdate{
		ProjectID:   projectID,
		Name:        input.Name,
		Question:    input.Question,
		SummaryID:   summaryID,
		SummaryText: input.Summary,
		Embedding:   embedding,
	}
	if err := u.store.UpsertProjectChain(ctx, update); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("project summary saved",
		"project_id", projectID,
		"summary_id", summaryID,
	)

	return &UpsertOutput{
		ProjectID: projectID,
		Name:      input.Name,
		SummaryID: summaryID,
	}, nil
}
