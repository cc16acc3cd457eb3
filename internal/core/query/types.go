package query

import (
	"context"

	"grounded-qa/internal/core/retriever"
)

// Searcher is satisfied by *retriever.Client.
type Searcher interface {
	Search(ctx context.Context, query string) ([]retriever.Hit, error)
}

type Request struct {
	Question string `json:"question"`
}

type Response struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
