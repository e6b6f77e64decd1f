package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/recollect/pkg/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4j implements GraphStore on a Neo4j server, delegating lexical scoring
// to its full-text index and similarity search to its vector index.
type Neo4j struct {
	driver        neo4j.DriverWithContext
	database      string
	fulltextIndex string
	vectorIndex   string
	dimensions    int
}

type Neo4jOption func(*Neo4j)

// WithDatabase sets the target database (defaults to the server default)
func WithDatabase(name string) Neo4jOption {
	return func(x *Neo4j) {
		x.database = name
	}
}

// WithFulltextIndex sets the full-text index name for summary text
func WithFulltextIndex(name string) Neo4jOption {
	return func(x *Neo4j) {
		x.fulltextIndex = name
	}
}

// WithVectorIndex sets the vector index name for summary embeddings
func WithVectorIndex(name string) Neo4jOption {
	return func(x *Neo4j) {
		x.vectorIndex = name
	}
}

// WithDimensions sets the embedding dimensions used by EnsureIndexes
func WithDimensions(n int) Neo4jOption {
	return func(x *Neo4j) {
		x.dimensions = n
	}
}

// NewNeo4j creates a GraphStore backed by a Neo4j server
func NewNeo4j(uri, user, password string, opts ...Neo4jOption) (*Neo4j, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create neo4j driver", goerr.V("uri", uri))
	}

	x := &Neo4j{
		driver:        driver,
		fulltextIndex: "project_summary_fulltext_index",
		vectorIndex:   "project_embedding_index",
		dimensions:    768,
	}

	for _, opt := range opts {
		opt(x)
	}

	return x, nil
}

func (x *Neo4j) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return x.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: x.database,
	})
}

// EnsureIndexes creates the full-text and vector indexes if they do not
// exist yet. Index names cannot be parameterized in schema statements.
func (x *Neo4j) EnsureIndexes(ctx context.Context) error {
	session := x.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	fulltext := fmt.Sprintf(
		"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (s:Summary) ON EACH [s.text]",
		x.fulltextIndex,
	)
	if _, err := session.Run(ctx, fulltext, nil); err != nil {
		return goerr.Wrap(err, "failed to create fulltext index", goerr.V("index", x.fulltextIndex))
	}

	vector := fmt.Sprintf(`CREATE VECTOR INDEX %s IF NOT EXISTS FOR (s:Summary) ON (s.embedding)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}`, x.vectorIndex, x.dimensions)
	if _, err := session.Run(ctx, vector, nil); err != nil {
		return goerr.Wrap(err, "failed to create vector index", goerr.V("index", x.vectorIndex))
	}

	return nil
}

func (x *Neo4j) UpsertProjectChain(ctx context.Context, update *ChainUpdate) error {
	session := x.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (p:Project {id: $project_id})
			SET p.name = $name,
			    p.question = $question,
			    p.updated_at = datetime()`,
			map[string]any{
				"project_id": string(update.ProjectID),
				"name":       update.Name,
				"question":   update.Question,
			}); err != nil {
			return nil, goerr.Wrap(err, "failed to upsert project node")
		}

		// Detach only the latest edge; the old summary and its historical
		// edge stay in place.
		res, err := tx.Run(ctx, `
			MATCH (p:Project {id: $project_id})-[r:HAS_LATEST_SUMMARY]->(s:Summary)
			DELETE r
			RETURN s.id AS prev_id`,
			map[string]any{"project_id": string(update.ProjectID)})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unlink latest summary")
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to collect previous summary")
		}
		var prevID string
		if len(records) > 0 {
			prevID = stringValue(records[0], "prev_id")
		}

		if _, err := tx.Run(ctx, `
			CREATE (s:Summary {id: $summary_id})
			SET s.text = $text,
			    s.embedding = $embedding,
			    s.created_at = datetime()`,
			map[string]any{
				"summary_id": string(update.SummaryID),
				"text":       update.SummaryText,
				"embedding":  toFloat64(update.Embedding),
			}); err != nil {
			return nil, goerr.Wrap(err, "failed to create summary node")
		}

		if _, err := tx.Run(ctx, `
			MATCH (p:Project {id: $project_id}), (s:Summary {id: $summary_id})
			MERGE (p)-[:HAS_LATEST_SUMMARY]->(s)
			MERGE (p)-[:HAS_SUMMARY]->(s)`,
			map[string]any{
				"project_id": string(update.ProjectID),
				"summary_id": string(update.SummaryID),
			}); err != nil {
			return nil, goerr.Wrap(err, "failed to link summary")
		}

		if prevID != "" {
			if _, err := tx.Run(ctx, `
				MATCH (s:Summary {id: $summary_id}), (prev:Summary {id: $prev_id})
				MERGE (s)-[:PREVIOUS_VERSION]->(prev)`,
				map[string]any{
					"summary_id": string(update.SummaryID),
					"prev_id":    prevID,
				}); err != nil {
				return nil, goerr.Wrap(err, "failed to link previous version")
			}
		}

		return nil, nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to apply version chain update",
			goerr.V("project_id", update.ProjectID))
	}

	return nil
}

func (x *Neo4j) GetProjectBySummary(ctx context.Context, id model.SummaryID) (*model.Project, error) {
	session := x.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Project)-[:HAS_SUMMARY]->(s:Summary {id: $summary_id})
			RETURN p.id AS id, p.name AS name, p.question AS question, p.updated_at AS updated_at`,
			map[string]any{"summary_id": string(id)})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query project by summary")
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to collect project")
		}
		if len(records) == 0 {
			return nil, goerr.Wrap(model.ErrNotFound, "no project owns summary", goerr.V("summary_id", id))
		}

		rec := records[0]
		project := &model.Project{
			ID:       model.ProjectID(stringValue(rec, "id")),
			Name:     stringValue(rec, "name"),
			Question: stringValue(rec, "question"),
		}
		if v, ok := rec.Get("updated_at"); ok {
			if t, ok := v.(time.Time); ok {
				project.UpdatedAt = t
			}
		}
		return project, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.Project), nil
}

func (x *Neo4j) GetLatestSummary(ctx context.Context, id model.ProjectID) (*model.LatestSummary, error) {
	session := x.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Project {id: $project_id})-[:HAS_LATEST_SUMMARY]->(s:Summary)
			RETURN p.id AS project_id, p.question AS question, s.text AS summary, s.id AS summary_id`,
			map[string]any{"project_id": string(id)})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query latest summary")
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to collect latest summary")
		}
		if len(records) == 0 {
			return nil, goerr.Wrap(model.ErrNotFound, "no latest summary", goerr.V("project_id", id))
		}

		rec := records[0]
		return &model.LatestSummary{
			ProjectID: model.ProjectID(stringValue(rec, "project_id")),
			Question:  stringValue(rec, "question"),
			Summary:   stringValue(rec, "summary"),
			SummaryID: model.SummaryID(stringValue(rec, "summary_id")),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.LatestSummary), nil
}

func (x *Neo4j) GetSummaries(ctx context.Context, ids []model.SummaryID) ([]*model.SearchResult, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := x.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	rawIDs := make([]any, len(ids))
	for i, id := range ids {
		rawIDs[i] = string(id)
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Project)-[:HAS_SUMMARY]->(s:Summary)
			WHERE s.id IN $ids
			RETURN p.id AS project_id, p.name AS project_name, p.question AS question,
			       s.text AS summary, s.id AS summary_id`,
			map[string]any{"ids": rawIDs})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query summaries")
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to collect summaries")
		}

		results := make([]*model.SearchResult, 0, len(records))
		for _, rec := range records {
			results = append(results, &model.SearchResult{
				ProjectID:   model.ProjectID(stringValue(rec, "project_id")),
				ProjectName: stringValue(rec, "project_name"),
				Question:    stringValue(rec, "question"),
				Summary:     stringValue(rec, "summary"),
				SummaryID:   model.SummaryID(stringValue(rec, "summary_id")),
			})
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]*model.SearchResult), nil
}

func (x *Neo4j) DeleteProject(ctx context.Context, id model.ProjectID) error {
	session := x.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (p:Project {id: $project_id})
			OPTIONAL MATCH (p)-[:HAS_SUMMARY]->(s:Summary)
			DETACH DELETE p, s`,
			map[string]any{"project_id": string(id)}); err != nil {
			return nil, goerr.Wrap(err, "failed to delete project")
		}
		return nil, nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete project cascade", goerr.V("project_id", id))
	}

	return nil
}

func (x *Neo4j) FullTextSearch(ctx context.Context, query string, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	session := x.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CALL db.index.fulltext.queryNodes($index, $query)
			YIELD node, score
			WHERE score >= $min_score
			RETURN node.id AS summary_id, node.text AS text, score
			ORDER BY score DESC
			LIMIT $limit`,
			map[string]any{
				"index":     x.fulltextIndex,
				"query":     query,
				"min_score": minScore,
				"limit":     int64(limit),
			})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to run fulltext query")
		}
		return collectScored(ctx, res)
	})
	if err != nil {
		if isMissingIndex(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "fulltext search failed", goerr.V("index", x.fulltextIndex))
	}

	return result.([]*model.ScoredSummary), nil
}

func (x *Neo4j) VectorSearch(ctx context.Context, embedding []float32, limit int, minScore float64) ([]*model.ScoredSummary, error) {
	session := x.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CALL db.index.vector.queryNodes($index, $top_k, $embedding)
			YIELD node, score
			WHERE score >= $min_score
			RETURN node.id AS summary_id, node.text AS text, score`,
			map[string]any{
				"index":     x.vectorIndex,
				"top_k":     int64(limit),
				"embedding": toFloat64(embedding),
				"min_score": minScore,
			})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to run vector query")
		}
		return collectScored(ctx, res)
	})
	if err != nil {
		if isMissingIndex(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "vector search failed", goerr.V("index", x.vectorIndex))
	}

	return result.([]*model.ScoredSummary), nil
}

func (x *Neo4j) Close(ctx context.Context) error {
	if err := x.driver.Close(ctx); err != nil {
		return goerr.Wrap(err, "failed to close neo4j driver")
	}
	return nil
}

func collectScored(ctx context.Context, res neo4j.ResultWithContext) ([]*model.ScoredSummary, error) {
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to collect search hits")
	}

	hits := make([]*model.ScoredSummary, 0, len(records))
	for _, rec := range records {
		hit := &model.ScoredSummary{
			SummaryID: model.SummaryID(stringValue(rec, "summary_id")),
			Text:      stringValue(rec, "text"),
		}
		if v, ok := rec.Get("score"); ok {
			if score, ok := v.(float64); ok {
				hit.Score = score
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func stringValue(rec *neo4j.Record, key string) string {
	if v, ok := rec.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}

// isMissingIndex reports whether the error is a missing search index, which
// the contract treats as an empty corpus rather than a failure.
func isMissingIndex(err error) bool {
	var ne *neo4j.Neo4jError
	if !errors.As(err, &ne) {
		return false
	}
	msg := strings.ToLower(ne.Msg)
	return strings.Contains(msg, "no such") && strings.Contains(msg, "index")
}
