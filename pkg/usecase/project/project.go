package project

import (
	"github.com/m-mizutani/recollect/pkg/adapter"
	"github.com/m-mizutani/recollect/pkg/repository"
)

// UseCase provides project version-chain operations
type UseCase struct {
	store    repository.GraphStore
	embedder adapter.Embedder
}

// New creates a new project UseCase instance
func New(store repository.GraphStore, embedder adapter.Embedder) *UseCase {
	return &UseCase{
		store:    store,
		embedder: embedder,
	}
}
