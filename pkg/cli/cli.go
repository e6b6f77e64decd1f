package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "recollect",
		Usage: "Versioned project knowledge graph with hybrid retrieval",
		Commands: []*cli.Command{
			serveCommand(),
			upsertCommand(),
			showCommand(),
			searchCommand(),
			deleteCommand(),
			initIndexCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
