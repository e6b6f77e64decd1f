package model

// ScoredSummary is a single hit from one search index. The score is only
// meaningful within the index that produced it; lexical relevance and cosine
// similarity are not comparable in magnitude.
type ScoredSummary struct {
	SummaryID SummaryID
	Text      string
	Score     float64
}

// SearchResult is a fused candidate hydrated with its owning project.
// Score is the fusion score, or the cross-encoder score after reranking.
type SearchResult struct {
	ProjectID   ProjectID
	ProjectName string
	Question    string
	Summary     string
	SummaryID   SummaryID
	Score       float64
}
