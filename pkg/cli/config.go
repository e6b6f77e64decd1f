package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/adapter"
	"github.com/m-mizutani/recollect/pkg/repository"
	"github.com/m-mizutani/recollect/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Store
	neo4jURI      string
	neo4jUser     string
	neo4jPassword string
	neo4jDatabase string
	fulltextIndex string
	vectorIndex   string
	dimensions    int64

	// Adapters
	geminiProject  string
	geminiLocation string
	embeddingModel string
	rerankerURL    string

	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "neo4j-uri",
			Usage:       "Neo4j connection URI",
			Value:       "neo4j://localhost:7687",
			Sources:     cli.EnvVars("NEO4J_URI"),
			Destination: &cfg.neo4jURI,
		},
		&cli.StringFlag{
			Name:        "neo4j-user",
			Usage:       "Neo4j user name",
			Value:       "neo4j",
			Sources:     cli.EnvVars("NEO4J_USER"),
			Destination: &cfg.neo4jUser,
		},
		&cli.StringFlag{
			Name:        "neo4j-password",
			Usage:       "Neo4j password",
			Sources:     cli.EnvVars("NEO4J_PASSWORD"),
			Destination: &cfg.neo4jPassword,
		},
		&cli.StringFlag{
			Name:        "neo4j-database",
			Usage:       "Neo4j database name (empty for the server default)",
			Sources:     cli.EnvVars("NEO4J_DATABASE"),
			Destination: &cfg.neo4jDatabase,
		},
		&cli.StringFlag{
			Name:        "fulltext-index",
			Usage:       "Full-text index name for summary text",
			Value:       "project_summary_fulltext_index",
			Sources:     cli.EnvVars("RECOLLECT_FULLTEXT_INDEX"),
			Destination: &cfg.fulltextIndex,
		},
		&cli.StringFlag{
			Name:        "vector-index",
			Usage:       "Vector index name for summary embeddings",
			Value:       "project_embedding_index",
			Sources:     cli.EnvVars("RECOLLECT_VECTOR_INDEX"),
			Destination: &cfg.vectorIndex,
		},
		&cli.IntFlag{
			Name:        "dimensions",
			Usage:       "Embedding dimensions",
			Value:       768,
			Sources:     cli.EnvVars("RECOLLECT_DIMENSIONS"),
			Destination: &cfg.dimensions,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RECOLLECT_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// modelFlags returns flags for the embedding and reranking collaborators
func modelFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Usage:       "Embedding model name",
			Sources:     cli.EnvVars("RECOLLECT_EMBEDDING_MODEL"),
			Destination: &cfg.embeddingModel,
		},
		&cli.StringFlag{
			Name:        "reranker-url",
			Usage:       "Base URL of the cross-encoder rerank service",
			Sources:     cli.EnvVars("RECOLLECT_RERANKER_URL"),
			Destination: &cfg.rerankerURL,
		},
	}
}

// setupLogger installs the configured logger into the context. Logs go to
// stderr so the serve command can keep stdout for the MCP transport.
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newStore creates a new graph store instance
func (cfg *config) newStore() (*repository.Neo4j, error) {
	if cfg.neo4jURI == "" {
		return nil, goerr.New("neo4j-uri is required")
	}

	store, err := repository.NewNeo4j(cfg.neo4jURI, cfg.neo4jUser, cfg.neo4jPassword,
		repository.WithDatabase(cfg.neo4jDatabase),
		repository.WithFulltextIndex(cfg.fulltextIndex),
		repository.WithVectorIndex(cfg.vectorIndex),
		repository.WithDimensions(int(cfg.dimensions)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create graph store")
	}
	return store, nil
}

// newEmbedder creates a new embedding adapter instance
func (cfg *config) newEmbedder(ctx context.Context) (adapter.Embedder, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	opts := []adapter.GeminiOption{
		adapter.WithDimensions(int32(cfg.dimensions)),
	}
	if cfg.embeddingModel != "" {
		opts = append(opts, adapter.WithEmbeddingModel(cfg.embeddingModel))
	}

	embedder, err := adapter.NewGeminiEmbedder(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedder")
	}
	return embedder, nil
}

// newReranker creates a new cross-encoder adapter instance, or nil when no
// rerank service is configured
func (cfg *config) newReranker() adapter.Reranker {
	if cfg.rerankerURL == "" {
		return nil
	}
	return adapter.NewHTTPReranker(cfg.rerankerURL)
}
