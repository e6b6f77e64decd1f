package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Embedder converts text into a fixed-length vector. The fusion and
// version-chain logic never computes embeddings itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder implements Embedder with the Gemini embedding API on
// Vertex AI
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

type GeminiOption func(*GeminiEmbedder)

// WithEmbeddingModel overrides the embedding model name
func WithEmbeddingModel(model string) GeminiOption {
	return func(g *GeminiEmbedder) {
		g.model = model
	}
}

// WithDimensions overrides the output dimensionality. Must match the vector
// index configuration of the store.
func WithDimensions(n int32) GeminiOption {
	return func(g *GeminiEmbedder) {
		g.dimensions = n
	}
}

// NewGeminiEmbedder creates an Embedder backed by Vertex AI
func NewGeminiEmbedder(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiEmbedder{
		client:     client,
		model:      "gemini-embedding-001",
		dimensions: 768,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	config := &genai.EmbedContentConfig{}
	if g.dimensions > 0 {
		dims := g.dimensions
		config.OutputDimensionality = &dims
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content")
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("empty embedding response", goerr.V("model", g.model))
	}

	return resp.Embeddings[0].Values, nil
}
