package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultK matches the cut-off the catalog benchmark reports.
const DefaultK = 3

// Answerer returns ranked result URLs for a query.
type Answerer interface {
	Predict(ctx context.Context, query string, budget int) ([]string, error)
}

// CaseResult is the score of one query.
type CaseResult struct {
	Query            string
	Predicted        []string
	Recall           float64
	AveragePrecision float64
}

// Report aggregates a run.
type Report struct {
	K          int
	MeanRecall float64
	MAP        float64
	Cases      []CaseResult
	Duration   time.Duration
}

// Runner evaluates a dataset with bounded concurrency.
type Runner struct {
	answerer    Answerer
	k           int
	budget      int
	concurrency int
	logger      *zap.Logger
}

// NewRunner creates a runner. k <= 0 uses DefaultK; budget below k is raised to k.
func NewRunner(answerer Answerer, k, budget, concurrency int, logger *zap.Logger) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	if budget < k {
		budget = k
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{answerer: answerer, k: k, budget: budget, concurrency: concurrency, logger: logger}
}

// Run answers every case and computes Mean Recall@K and MAP@K.
// The first failing query cancels the rest.
func (r *Runner) Run(ctx context.Context, ds Dataset) (Report, error) {
	start := time.Now()
	results := make([]CaseResult, len(ds.Cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, c := range ds.Cases {
		g.Go(func() error {
			predicted, err := r.answerer.Predict(gctx, c.Query, r.budget)
			if err != nil {
				return fmt.Errorf("case %d %q: %w", i+1, c.Query, err)
			}
			results[i] = CaseResult{
				Query:            c.Query,
				Predicted:        predicted,
				Recall:           RecallAtK(predicted, c.Relevant, r.k),
				AveragePrecision: AveragePrecisionAtK(predicted, c.Relevant, r.k),
			}
			r.logger.Debug("Evaluated case",
				zap.Int("case", i+1),
				zap.Float64("recall", results[i].Recall),
				zap.Float64("ap", results[i].AveragePrecision),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{K: r.k, Cases: results, Duration: time.Since(start)}
	for _, cr := range results {
		rep.MeanRecall += cr.Recall
		rep.MAP += cr.AveragePrecision
	}
	n := float64(len(results))
	if n > 0 {
		rep.MeanRecall /= n
		rep.MAP /= n
	}

	r.logger.Info("Evaluation finished",
		zap.String("dataset", ds.Name),
		zap.Int("cases", len(results)),
		zap.Int("k", r.k),
		zap.Float64("mean_recall", rep.MeanRecall),
		zap.Float64("map", rep.MAP),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}
