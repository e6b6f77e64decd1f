package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg      config
		query    string
		topK     int64
		rrfK     int64
		rerank   bool
		semantic bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query text",
			Sources:     cli.EnvVars("RECOLLECT_SEARCH_QUERY"),
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of results (0 uses the configured default)",
			Sources:     cli.EnvVars("RECOLLECT_SEARCH_TOP_K"),
			Destination: &topK,
		},
		&cli.IntFlag{
			Name:        "rrf-k",
			Usage:       "Rank fusion dampening constant (0 uses the configured default)",
			Sources:     cli.EnvVars("RECOLLECT_SEARCH_RRF_K"),
			Destination: &rrfK,
		},
		&cli.BoolFlag{
			Name:        "rerank",
			Aliases:     []string{"r"},
			Usage:       "Rerank fused candidates with the cross-encoder",
			Destination: &rerank,
		},
		&cli.BoolFlag{
			Name:        "semantic",
			Usage:       "Plain vector similarity search without lexical fusion",
			Destination: &semantic,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, modelFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search project summaries with hybrid lexical and semantic retrieval",
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

			opts := []search.Option{}
			if reranker := cfg.newReranker(); reranker != nil {
				opts = append(opts, search.WithReranker(reranker))
			}
			uc := search.New(store, embedder, opts...)

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			sp.Suffix = " Searching..."
			sp.Start()

			var results []*model.SearchResult
			switch {
			case semantic:
				results, err = uc.Semantic(ctx, query, int(topK))
			case rerank:
				results, err = uc.HybridRerank(ctx, query, search.Options{TopK: int(topK), RRFK: int(rrfK)})
			default:
				results, err = uc.Hybrid(ctx, query, search.Options{TopK: int(topK), RRFK: int(rrfK)})
			}
			sp.Stop()
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "No results\n")
				return nil
			}

			for i, r := range results {
				fmt.Fprintf(c.Root().Writer, "%d. [%.4f] %s (%s)\n", i+1, r.Score, r.ProjectName, r.ProjectID)
				if r.Question != "" {
					fmt.Fprintf(c.Root().Writer, "   Question: %s\n", r.Question)
				}
				fmt.Fprintf(c.Root().Writer, "   %s\n\n", r.Summary)
			}

			return nil
		},
	}
}
