package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var (
		cfg       config
		bySummary bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "by-summary",
			Usage:       "Treat the argument as a summary ID and show its owning project",
			Destination: &bySummary,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "show",
		Usage:     "Show the latest summary of a project",
		ArgsUsage: "<project-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			id := c.Args().First()
			if id == "" {
				return goerr.New("ID argument is required")
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			// Reads need no embedder
			uc := project.New(store, nil)

			if bySummary {
				found, err := uc.GetBySummary(ctx, model.SummaryID(id))
				if errors.Is(err, model.ErrNotFound) {
					fmt.Fprintf(c.Root().Writer, "No project found\n")
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(c.Root().Writer, "Project: %s (%s)\n", found.Name, found.ID)
				fmt.Fprintf(c.Root().Writer, "Question: %s\n", found.Question)
				fmt.Fprintf(c.Root().Writer, "Updated: %s\n", found.UpdatedAt.Format("2006-01-02 15:04:05"))
				return nil
			}

			latest, err := uc.GetLatest(ctx, model.ProjectID(id))
			if errors.Is(err, model.ErrNotFound) {
				fmt.Fprintf(c.Root().Writer, "No project found\n")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Project: %s\n", latest.ProjectID)
			fmt.Fprintf(c.Root().Writer, "Question: %s\n", latest.Question)
			fmt.Fprintf(c.Root().Writer, "Summary (%s):\n%s\n", latest.SummaryID, latest.Summary)
			return nil
		},
	}
}
