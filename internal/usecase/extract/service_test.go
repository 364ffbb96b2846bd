package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
)

type mockCompleter struct {
	text   string
	err    error
	prompt string
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

func TestExtract_Success(t *testing.T) {
	llm := &mockCompleter{text: "```json\n{\"duration_limit\": 40, \"skills\": [\"Java\"], \"level\": \"mid\"}\n```"}
	svc := New(llm, zap.NewNop())

	out := svc.Extract(context.Background(), "Java developer, test under 40 minutes")
	if out.Fallback {
		t.Fatalf("unexpected fallback: %v", out.Reason)
	}
	if limit, ok := out.Value.DurationLimit(); !ok || limit != 40 {
		t.Errorf("expected limit 40, got %d", limit)
	}
	if !strings.Contains(llm.prompt, `"Java developer, test under 40 minutes"`) {
		t.Errorf("prompt must embed the quoted query, got %q", llm.prompt)
	}
	if strings.Contains(llm.prompt, "{{QUERY}}") {
		t.Error("placeholder not substituted")
	}
}

func TestExtract_FallbackCases(t *testing.T) {
	tests := []struct {
		name   string
		llm    *mockCompleter
		target error
	}{
		{"provider error", &mockCompleter{err: domain.ErrLLMProviderError}, domain.ErrLLMProviderError},
		{"not json", &mockCompleter{text: "I think about 30 minutes"}, domain.ErrInvalidLLMOutput},
		{"zero duration", &mockCompleter{text: `{"duration_limit": 0}`}, domain.ErrInvalidLLMOutput},
		{"negative duration", &mockCompleter{text: `{"duration_limit": -5}`}, domain.ErrInvalidLLMOutput},
		{"fractional duration", &mockCompleter{text: `{"duration_limit": 12.5}`}, domain.ErrInvalidLLMOutput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := New(tc.llm, zap.NewNop()).Extract(context.Background(), "q")
			if !out.Fallback {
				t.Fatal("expected fallback")
			}
			if !errors.Is(out.Reason, tc.target) {
				t.Errorf("expected reason %v, got %v", tc.target, out.Reason)
			}
			if !out.Value.IsNeutral() {
				t.Errorf("fallback must be neutral, got %+v", out.Value)
			}
		})
	}
}

func TestBuildPrompt_EscapesQuotes(t *testing.T) {
	p := buildPrompt(`he said "hi"`)
	if !strings.Contains(p, `"he said \"hi\""`) {
		t.Errorf("query must be JSON-quoted, got %q", p)
	}
}
