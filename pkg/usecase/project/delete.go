package project

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/utils/logging"
)

// Delete removes the project and all of its summaries. Deleting an unknown
// project succeeds; the operation is idempotent and irreversible.
func (u *UseCase) Delete(ctx context.Context, id model.ProjectID) error {
	if id == "" {
		return goerr.Wrap(model.ErrInvalidInput, "project ID is required")
	}

	if err := u.store.DeleteProject(ctx, id); err != nil {
		return err
	}

	logging.From(ctx).Info("project deleted", "project_id", id)
	return nil
}
