package evaluation

import (
	"context"

	recommenduc "github.com/kailas-cloud/assessrec/internal/usecase/recommend"
)

// pipeline is the orchestrator as seen by the evaluator.
type pipeline interface {
	Answer(ctx context.Context, q string, budget int) (recommenduc.Result, error)
}

// PipelineAnswerer predicts URLs by running the full recommendation pipeline.
type PipelineAnswerer struct {
	pipeline pipeline
}

// NewPipelineAnswerer adapts the orchestrator to Answerer.
func NewPipelineAnswerer(p pipeline) *PipelineAnswerer {
	return &PipelineAnswerer{pipeline: p}
}

// Predict implements Answerer.
func (a *PipelineAnswerer) Predict(ctx context.Context, query string, budget int) ([]string, error) {
	res, err := a.pipeline.Answer(ctx, query, budget)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(res.Recommendations))
	for i, c := range res.Recommendations {
		out[i] = c.Record().URL()
	}
	return out, nil
}
