package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/urfave/cli/v3"
)

func upsertCommand() *cli.Command {
	var (
		cfg       config
		name      string
		question  string
		summary   string
		projectID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "Readable project name",
			Destination: &name,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "The originating question or intent",
			Destination: &question,
		},
		&cli.StringFlag{
			Name:        "summary",
			Aliases:     []string{"s"},
			Usage:       "Summary text to append to the project history",
			Destination: &summary,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "project-id",
			Aliases:     []string{"p"},
			Usage:       "Existing project ID; omit to create a new project",
			Destination: &projectID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, modelFlags(&cfg)...)

	return &cli.Command{
		Name:  "upsert",
		Usage: "Create or update a project with a new summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			uc := project.New(store, embedder)
			out, err := uc.Upsert(ctx, project.UpsertInput{
				ProjectID: model.ProjectID(projectID),
				Name:      name,
				Question:  question,
				Summary:   summary,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Saved. Project: %s (%s), Summary: %s\n",
				out.Name, out.ProjectID, out.SummaryID)
			return nil
		},
	}
}
