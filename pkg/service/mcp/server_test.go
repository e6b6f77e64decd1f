package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recollect/pkg/repository"
	"github.com/m-mizutani/recollect/pkg/service/mcp"
	"github.com/m-mizutani/recollect/pkg/usecase/project"
	"github.com/m-mizutani/recollect/pkg/usecase/search"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubEmbedder struct{}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5, 0.5, 0.5}, nil
}

func setupSession(t *testing.T) (*mcpsdk.ClientSession, *repository.MemStore) {
	ctx := context.Background()
	store := repository.NewMemStore()
	embedder := &stubEmbedder{}

	server := mcp.NewServer(mcp.UseCases{
		Project: project.New(store, embedder),
		Search:  search.New(store, embedder),
	})

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	gt.NoError(t, err)

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "0.0.1",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	gt.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		serverSession.Close()
	})

	return session, store
}

func callText(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	gt.NoError(t, err)
	gt.V(t, result).NotNil()
	gt.A(t, result.Content).Longer(0)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	session, _ := setupSession(t)

	tools, err := session.ListTools(context.Background(), nil)
	gt.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, name := range []string{
		"upsert_project",
		"get_project_by_summary",
		"get_latest_summary",
		"hybrid_search",
		"hybrid_rerank_search",
		"delete_project",
	} {
		gt.True(t, names[name])
	}
}

func TestUpsertAndResume(t *testing.T) {
	session, store := setupSession(t)

	text := callText(t, session, "upsert_project", map[string]any{
		"name":     "Incident review",
		"question": "What caused the outage?",
		"summary":  "DNS misconfiguration narrowed down",
	})
	gt.S(t, text).Contains("Saved.")
	gt.S(t, text).Contains("Incident review")

	// Recover the generated IDs from the store
	hits, err := store.FullTextSearch(context.Background(), "misconfiguration", 1, 0)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)

	owner, err := store.GetProjectBySummary(context.Background(), hits[0].SummaryID)
	gt.NoError(t, err)

	text = callText(t, session, "get_latest_summary", map[string]any{
		"project_id": string(owner.ID),
	})
	var latest map[string]any
	gt.NoError(t, json.Unmarshal([]byte(text), &latest))
	gt.Equal(t, latest["latest_summary"], "DNS misconfiguration narrowed down")
	gt.Equal(t, latest["question"], "What caused the outage?")

	text = callText(t, session, "get_project_by_summary", map[string]any{
		"summary_id": string(hits[0].SummaryID),
	})
	var found map[string]any
	gt.NoError(t, json.Unmarshal([]byte(text), &found))
	gt.Equal(t, found["project_name"], "Incident review")
}

func TestNotFoundMessages(t *testing.T) {
	session, _ := setupSession(t)

	text := callText(t, session, "get_latest_summary", map[string]any{
		"project_id": "2b7f9f0a-0000-0000-0000-000000000000",
	})
	gt.Equal(t, text, "No project found.")

	text = callText(t, session, "get_project_by_summary", map[string]any{
		"summary_id": "2b7f9f0a-0000-0000-0000-000000000001",
	})
	gt.Equal(t, text, "No project found.")
}

func TestHybridSearchTool(t *testing.T) {
	session, _ := setupSession(t)

	callText(t, session, "upsert_project", map[string]any{
		"name":    "Search infra",
		"summary": "Evaluated hybrid retrieval for the internal wiki",
	})
	callText(t, session, "upsert_project", map[string]any{
		"name":    "Billing",
		"summary": "Migrated invoices to the new ledger",
	})

	text := callText(t, session, "hybrid_search", map[string]any{
		"query": "hybrid retrieval",
		"top_k": 5,
	})
	var results []map[string]any
	gt.NoError(t, json.Unmarshal([]byte(text), &results))
	gt.A(t, results).Longer(0)
	gt.True(t, strings.Contains(results[0]["summary"].(string), "hybrid retrieval"))
}

func TestDeleteProjectTool(t *testing.T) {
	session, store := setupSession(t)

	callText(t, session, "upsert_project", map[string]any{
		"name":    "Ephemeral",
		"summary": "to be removed",
	})

	hits, err := store.FullTextSearch(context.Background(), "removed", 1, 0)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
	owner, err := store.GetProjectBySummary(context.Background(), hits[0].SummaryID)
	gt.NoError(t, err)

	text := callText(t, session, "delete_project", map[string]any{
		"project_id": string(owner.ID),
	})
	gt.Equal(t, text, "true")

	text = callText(t, session, "get_latest_summary", map[string]any{
		"project_id": string(owner.ID),
	})
	gt.Equal(t, text, "No project found.")
}
