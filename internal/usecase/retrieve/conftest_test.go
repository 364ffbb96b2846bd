package retrieve

import (
	"context"
	"testing"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
)

type mockEmbedder struct {
	vec    []float32
	tokens int
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

// newSnapshot builds a corpus where record i has durations[i] and matrix[i].
func newSnapshot(t *testing.T, durations []int, matrix [][]float32) *corpus.Snapshot {
	t.Helper()
	recs := make([]assessment.Record, len(durations))
	for i, d := range durations {
		r, err := assessment.New(i, string(rune('a'+i)), "", d, []string{"Knowledge & Skills"}, "",
			assessment.SupportYes, assessment.SupportNo)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		recs[i] = r
	}
	snap, err := corpus.New(recs, matrix, "test-model")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func rows(cands Result) []int {
	out := make([]int, len(cands.Candidates))
	for i, c := range cands.Candidates {
		out[i] = c.Index()
	}
	return out
}
