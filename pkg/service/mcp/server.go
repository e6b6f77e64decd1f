package mcp

import (
	"context"

	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectUseCase defines the version-chain operations exposed as tools
type ProjectUseCase interface {
	Upsert(ctx context.Context, input project.UpsertInput) (*project.UpsertOutput, error)
	GetLatest(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error)
	GetBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error)
	Delete(ctx context.Context, id model.ProjectID) error
}

// SearchUseCase defines the retrieval operations exposed as tools
type SearchUseCase interface {
	Hybrid(ctx context.Context, query string, opts search.Options) ([]*model.SearchResult, error)
	HybridRerank(ctx context.Context, query string, opts search.Options) ([]*model.SearchResult, error)
}

// UseCases bundles the domain operations served over MCP
type UseCases struct {
	Project ProjectUseCase
	Search  SearchUseCase
}

// NewServer creates an MCP server with all knowledge graph tools registered
func NewServer(uc UseCases) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "recollect",
		Version: "0.1.0",
	}, nil)

	addTools(server, uc)

	return server
}

// Serve runs the MCP server over stdio until ctx is done
func Serve(ctx context.Context, uc UseCases) error {
	return NewServer(uc).Run(ctx, &mcp.StdioTransport{})
}
