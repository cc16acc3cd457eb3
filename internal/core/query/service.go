package query

import (
	"context"
	"time"

	"grounded-qa/config"
	"grounded-qa/internal/core/completion"
	"grounded-qa/internal/core/prompt"
	"grounded-qa/pkg/logger"
)

// Service holds the clients built at start-up. It has no mutable state and
// is shared by all requests.
type Service struct {
	searcher  Searcher
	assembler *prompt.Assembler
	completer completion.Completer
}

func NewService(searcher Searcher, assembler *prompt.Assembler, completer completion.Completer) *Service {
	return &Service{searcher: searcher, assembler: assembler, completer: completer}
}

// Run executes the query flow: search → prompt → LLM. Each step needs the
// previous one's output, so they run in sequence; any error ends the run.
func (s *Service) Run(ctx context.Context, question string) (Response, error) {
	start := time.Now()

	hits, err := s.searcher.Search(ctx, question)
	if err != nil {
		logger.Error(err, "%v: search failed", config.ModuleQuery)
		return Response{}, err
	}

	systemPrompt, err := s.assembler.Assemble(hits)
	if err != nil {
		logger.Error(err, "%v: assemble prompt failed", config.ModuleQuery)
		return Response{}, err
	}
	logger.WithFields(map[string]interface{}{
		"hits":          len(hits),
		"prompt_length": len(systemPrompt),
	}).Debug("query: prompt assembled")

	answer, err := s.completer.Complete(ctx, systemPrompt, question)
	if err != nil {
		logger.Error(err, "%v: completion failed", config.ModuleQuery)
		return Response{}, err
	}

	logger.WithFields(map[string]interface{}{
		"hits":       len(hits),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("query: done")
	return Response{Question: question, Answer: answer}, nil
}
