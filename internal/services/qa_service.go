package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/retrieval"
	"github.com/markdave123-py/Deskmate/internal/models"
)

const systemPrompt = "You are an intelligent assistant answering based only on the given document content. " +
	"If the answer is not in the document, reply with an empty message."

type QAService struct {
	llm core.LLMProvider
	log *zap.SugaredLogger
}

func NewQAService(llm core.LLMProvider, log *zap.SugaredLogger) *QAService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &QAService{llm: llm, log: log}
}

// Answer retrieves the chunks closest to query and asks the model to answer
// from them. A blank reply is reported as Found=false, not as an error.
func (s *QAService) Answer(ctx context.Context, query string, r *retrieval.Retriever) (*models.QueryAnswer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.ErrEmptyQuery
	}
	if r == nil {
		return nil, core.ErrNoDocument
	}

	chunks, err := r.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	// Build context prompt
	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(ch.Text)
		sb.WriteString("\n---\n")
	}
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), query)

	answer, err := s.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, core.ErrGenerationProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrGenerationProvider, err)
	}
	answer = strings.TrimSpace(answer)

	s.log.Debugw("query answered", "index", r.Key(), "sources", len(chunks), "found", answer != "")
	return &models.QueryAnswer{
		Query:   query,
		Text:    answer,
		Found:   answer != "",
		Sources: chunks,
	}, nil
}
