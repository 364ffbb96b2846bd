// Package extract turns a free-text query into structured constraints.
package extract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/llmresponse"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
)

//go:embed prompt.md
var promptTemplate string

// Service extracts query parameters with a single completion call.
type Service struct {
	llm    Completer
	logger *zap.Logger
}

// New creates an extraction service.
func New(llm Completer, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Extract never fails: any provider or parse error yields neutral parameters
// with the reason attached.
func (s *Service) Extract(ctx context.Context, q string) domain.Outcome[query.Parameters] {
	raw, err := s.llm.Complete(ctx, buildPrompt(q))
	if err != nil {
		return s.fallback(fmt.Errorf("complete: %w", err))
	}

	params, err := llmresponse.ParseParameters(raw)
	if err != nil {
		return s.fallback(err)
	}

	return domain.Succeeded(params)
}

func (s *Service) fallback(reason error) domain.Outcome[query.Parameters] {
	s.logger.Warn("Parameter extraction degraded to neutral parameters", zap.Error(reason))
	return domain.FellBack(query.Neutral(), reason)
}

func buildPrompt(q string) string {
	quoted, err := json.Marshal(q)
	if err != nil {
		quoted = []byte(`""`)
	}
	return strings.ReplaceAll(promptTemplate, "{{QUERY}}", string(quoted))
}
