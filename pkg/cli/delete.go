package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/urfave/cli/v3"
)

func deleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a project and all of its summaries",
		ArgsUsage: "<project-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			id := c.Args().First()
			if id == "" {
				return goerr.New("project ID argument is required")
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			uc := project.New(store, nil)
			if err := uc.Delete(ctx, model.ProjectID(id)); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Deleted project %s\n", id)
			return nil
		},
	}
}
