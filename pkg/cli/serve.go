package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	mcpserver "github.com/m-mizutani/recollect/pkg/service/mcp"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
	"github.com/m-mizutani/recollect/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// serveConfig is the optional YAML configuration for retrieval tuning
type serveConfig struct {
	Search struct {
		TopK             int     `yaml:"top_k"`
		RRFK             int     `yaml:"rrf_k"`
		FusePoolFactor   int     `yaml:"fuse_pool_factor"`
		RerankPoolFactor int     `yaml:"rerank_pool_factor"`
		SemanticMinScore float64 `yaml:"semantic_min_score"`
		SemanticTopK     int     `yaml:"semantic_top_k"`
	} `yaml:"search"`
}

func loadServeConfig(path string) (search.Config, error) {
	cfg := search.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file serveConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	if file.Search.TopK > 0 {
		cfg.TopK = file.Search.TopK
	}
	if file.Search.RRFK > 0 {
		cfg.RRFK = file.Search.RRFK
	}
	if file.Search.FusePoolFactor > 0 {
		cfg.FusePoolFactor = file.Search.FusePoolFactor
	}
	if file.Search.RerankPoolFactor > 0 {
		cfg.RerankPoolFactor = file.Search.RerankPoolFactor
	}
	if file.Search.SemanticMinScore > 0 {
		cfg.SemanticMinScore = file.Search.SemanticMinScore
	}
	if file.Search.SemanticTopK > 0 {
		cfg.SemanticTopK = file.Search.SemanticTopK
	}

	return cfg, nil
}

func serveCommand() *cli.Command {
	var (
		cfg        config
		configPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML file with retrieval tuning",
			Sources:     cli.EnvVars("RECOLLECT_CONFIG"),
			Destination: &configPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, modelFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			searchCfg, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}

			store, err := cfg.newStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			embedder, err := cfg.newEmbedder(ctx)
			if err != nil {
				return err
			}

			searchOpts := []search.Option{search.WithConfig(searchCfg)}
			if reranker := cfg.newReranker(); reranker != nil {
				searchOpts = append(searchOpts, search.WithReranker(reranker))
			}

			uc := mcpserver.UseCases{
				Project: project.New(store, embedder),
				Search:  search.New(store, embedder, searchOpts...),
			}

			logging.From(ctx).Info("starting MCP server", "uri", cfg.neo4jURI)
			return mcpserver.Serve(ctx, uc)
		},
	}
}
