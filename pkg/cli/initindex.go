package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func initIndexCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "init-index",
		Usage: "Create the full-text and vector indexes if they do not exist",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			store, err := cfg.newStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.EnsureIndexes(ctx); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Indexes ready: %s, %s\n", cfg.fulltextIndex, cfg.vectorIndex)
			return nil
		},
	}
}
