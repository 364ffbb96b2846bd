// Package rerank reorders retrieved candidates with a single LLM relevance call.
package rerank

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/candidate"
	"github.com/kailas-cloud/assessrec/internal/domain/llmresponse"
)

//go:embed prompt.md
var promptTemplate string

// Service reranks candidates.
type Service struct {
	llm    Completer
	logger *zap.Logger
}

// New creates a rerank service.
func New(llm Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Rerank returns at most budget candidates, each taken from cands, without repeats.
// When the LLM call fails or yields no usable index, the first budget candidates are
// returned in input order with the reason attached.
func (s *Service) Rerank(
	ctx context.Context, q string, cands []candidate.Candidate, budget int,
) domain.Outcome[[]candidate.Candidate] {
	if len(cands) == 0 || budget <= 0 {
		return domain.Succeeded([]candidate.Candidate{})
	}

	prompt, err := buildPrompt(q, cands)
	if err != nil {
		return s.fallback(cands, budget, err)
	}

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return s.fallback(cands, budget, fmt.Errorf("complete: %w", err))
	}

	indices, err := llmresponse.ParseRanking(raw)
	if err != nil {
		return s.fallback(cands, budget, err)
	}

	selected := llmresponse.SelectRanking(indices, len(cands), budget)
	if len(selected) == 0 {
		return s.fallback(cands, budget,
			fmt.Errorf("%w: no valid index among %d returned", domain.ErrInvalidLLMOutput, len(indices)))
	}

	out := make([]candidate.Candidate, len(selected))
	for i, idx := range selected {
		out[i] = cands[idx]
	}
	return domain.Succeeded(out)
}

func (s *Service) fallback(
	cands []candidate.Candidate, budget int, reason error,
) domain.Outcome[[]candidate.Candidate] {
	s.logger.Warn("Rerank degraded to similarity order",
		zap.Int("candidates", len(cands)),
		zap.Error(reason),
	)
	return domain.FellBack(candidate.Head(cands, budget), reason)
}

type promptItem struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	TestType    string `json:"test_type"`
}

// buildPrompt lists candidates without their similarity scores.
func buildPrompt(q string, cands []candidate.Candidate) (string, error) {
	items := make([]promptItem, len(cands))
	for i, c := range cands {
		r := c.Record()
		items[i] = promptItem{
			Index:       i,
			Title:       r.Title(),
			Description: r.Description(),
			Duration:    r.Duration(),
			TestType:    r.TestType(),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	quoted, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}

	// Single pass: placeholder text inside the query is never expanded.
	r := strings.NewReplacer(
		"{{QUERY}}", string(quoted),
		"{{CANDIDATES_JSON}}", strings.TrimSpace(buf.String()),
	)
	return r.Replace(promptTemplate), nil
}
