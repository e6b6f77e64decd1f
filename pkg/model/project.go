package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectID string

// NewProjectID generates a new unique ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

type SummaryID string

// NewSummaryID generates a new unique SummaryID
func NewSummaryID() SummaryID {
	return SummaryID(uuid.New().String())
}

// Project is a named unit of work tracked in the knowledge graph
type Project struct {
	ID        ProjectID
	Name      string
	Question  string
	UpdatedAt time.Time
}

// Summary is a point-in-time snapshot of a project. Previous points to the
// summary it superseded; the backward chain is append-only.
type Summary struct {
	ID        SummaryID
	Text      string
	Embedding []float32
	CreatedAt time.Time
	Previous  SummaryID
}

// LatestSummary is the read model for resuming a project from its most
// recent summary
type LatestSummary struct {
	ProjectID ProjectID
	Question  string
	Summary   string
	SummaryID SummaryID
}
