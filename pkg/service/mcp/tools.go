package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type upsertParams struct {
	Name      string `json:"name" jsonschema:"Readable project name"`
	Question  string `json:"question" jsonschema:"The originating question or intent of the project"`
	Summary   string `json:"summary" jsonschema:"Point-in-time summary text to append to the project history"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"Existing project ID; omit to create a new project"`
}

type projectBySummaryParams struct {
	SummaryID string `json:"summary_id" jsonschema:"The ID of a summary node"`
}

type latestSummaryParams struct {
	ProjectID string `json:"project_id" jsonschema:"The ID of the project to resume"`
}

type hybridSearchParams struct {
	Query string `json:"query" jsonschema:"Natural language query text"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"Maximum number of results (default 197)"`
	RRFK  int    `json:"rrf_k,omitempty" jsonschema:"Rank fusion dampening constant (default 60)"`
}

type deleteParams struct {
	ProjectID string `json:"project_id" jsonschema:"The unique ID of the project to remove"`
}

func addTools(server *mcp.Server, uc UseCases) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "upsert_project",
		Description: "Creates or updates a project with a readable name. Links the new summary to the previous one.",
	}, upsertTool(uc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_project_by_summary",
		Description: "Fetches the project node that owns a given summary ID.",
	}, projectBySummaryTool(uc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_latest_summary",
		Description: "Fetches the single most recent summary for a project ID. Use this to resume a project.",
	}, latestSummaryTool(uc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hybrid_search",
		Description: "Hybrid search over project summaries combining full-text and semantic vector search with Reciprocal Rank Fusion.",
	}, hybridSearchTool(uc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hybrid_rerank_search",
		Description: "Hybrid search with Reciprocal Rank Fusion for candidate ranking, then reranks the top results with a cross-encoder model for precise relevance scoring.",
	}, hybridRerankTool(uc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_project",
		Description: "Deletes a project and all of its summaries. Use this only when specifically asked to delete, remove, or forget a project by its ID.",
	}, deleteTool(uc))
}

func upsertTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *upsertParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *upsertParams) (*mcp.CallToolResult, any, error) {
		out, err := uc.Project.Upsert(ctx, project.UpsertInput{
			ProjectID: model.ProjectID(params.ProjectID),
			Name:      params.Name,
			Question:  params.Question,
			Summary:   params.Summary,
		})
		if err != nil {
			return nil, nil, err
		}

		text := fmt.Sprintf("Saved. Project: %s (%s), Summary: %s", out.Name, out.ProjectID, out.SummaryID)
		return textResult(text), nil, nil
	}
}

func projectBySummaryTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *projectBySummaryParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *projectBySummaryParams) (*mcp.CallToolResult, any, error) {
		found, err := uc.Project.GetBySummary(ctx, model.SummaryID(params.SummaryID))
		if errors.Is(err, model.ErrNotFound) {
			return textResult("No project found."), nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		return jsonResult(map[string]any{
			"project_id":   found.ID,
			"project_name": found.Name,
			"question":     found.Question,
			"updated_at":   found.UpdatedAt,
		})
	}
}

func latestSummaryTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *latestSummaryParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *latestSummaryParams) (*mcp.CallToolResult, any, error) {
		latest, err := uc.Project.GetLatest(ctx, model.ProjectID(params.ProjectID))
		if errors.Is(err, model.ErrNotFound) {
			return textResult("No project found."), nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		return jsonResult(map[string]any{
			"project_id":     latest.ProjectID,
			"question":       latest.Question,
			"latest_summary": latest.Summary,
			"summary_id":     latest.SummaryID,
		})
	}
}

func hybridSearchTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *hybridSearchParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *hybridSearchParams) (*mcp.CallToolResult, any, error) {
		results, err := uc.Search.Hybrid(ctx, params.Query, search.Options{
			TopK: params.TopK,
			RRFK: params.RRFK,
		})
		if err != nil {
			return nil, nil, err
		}
		return searchResults(results)
	}
}

func hybridRerankTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *hybridSearchParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *hybridSearchParams) (*mcp.CallToolResult, any, error) {
		results, err := uc.Search.HybridRerank(ctx, params.Query, search.Options{
			TopK: params.TopK,
			RRFK: params.RRFK,
		})
		if err != nil {
			return nil, nil, err
		}
		return searchResults(results)
	}
}

func deleteTool(uc UseCases) func(context.Context, *mcp.CallToolRequest, *deleteParams) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, params *deleteParams) (*mcp.CallToolResult, any, error) {
		if err := uc.Project.Delete(ctx, model.ProjectID(params.ProjectID)); err != nil {
			return nil, nil, err
		}
		return textResult("true"), nil, nil
	}
}

func searchResults(results []*model.SearchResult) (*mcp.CallToolResult, any, error) {
	items := make([]map[string]any, len(results))
	for i, r := range results {
		items[i] = map[string]any{
			"project_id":   r.ProjectID,
			"project_name": r.ProjectName,
			"question":     r.Question,
			"summary":      r.Summary,
			"summary_id":   r.SummaryID,
			"score":        r.Score,
		}
	}
	return jsonResult(items)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(payload any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(data)), nil, nil
}
