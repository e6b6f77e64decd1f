package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

// Reranker scores (query, document) pairs with a cross-encoder model.
// Scores are comparable to each other but carry no absolute meaning.
type Reranker interface {
	// Score returns one relevance score per document, index-aligned with
	// the input. Empty input returns an empty result without a remote call.
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

// HTTPReranker calls a text-embeddings-inference style /rerank endpoint
type HTTPReranker struct {
	baseURL string
	client  *http.Client
}

type RerankerOption func(*HTTPReranker)

// WithHTTPClient overrides the HTTP client, e.g. to set a timeout
func WithHTTPClient(client *http.Client) RerankerOption {
	return func(x *HTTPReranker) {
		x.client = client
	}
}

// NewHTTPReranker creates a Reranker that POSTs to baseURL + "/rerank"
func NewHTTPReranker(baseURL string, opts ...RerankerOption) *HTTPReranker {
	x := &HTTPReranker{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func (x *HTTPReranker) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: documents})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal rerank request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rerank request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "rerank request failed", goerr.V("url", x.baseURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, goerr.New("rerank request rejected",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, goerr.Wrap(err, "failed to decode rerank response")
	}

	scores := make([]float64, len(documents))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, goerr.New("rerank result index out of range",
				goerr.V("index", r.Index), goerr.V("documents", len(documents)))
		}
		scores[r.Index] = r.Score
	}

	return scores, nil
}
