// Package recommend sequences the recommendation pipeline.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/candidate"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
	domtrace "github.com/kailas-cloud/assessrec/internal/domain/trace"
	"github.com/kailas-cloud/assessrec/internal/logger"
	"github.com/kailas-cloud/assessrec/internal/metrics"
	"github.com/kailas-cloud/assessrec/internal/usecase/retrieve"
)

// DefaultBudget is the number of recommendations returned when none is requested.
const DefaultBudget = 10

// Options tunes the pipeline.
type Options struct {
	// Budget is the default result count.
	Budget int
	// MaxBudget caps caller-supplied budgets.
	MaxBudget int
	// OverFetchFactor multiplies the budget to get the candidate count; raised to at least 2.
	OverFetchFactor int
}

// Result is one answered query.
type Result struct {
	Recommendations   []candidate.Candidate
	TraceID           string
	Parameters        query.Parameters
	ConstraintRelaxed bool
	ExtractDegraded   bool
	RerankDegraded    bool
}

// Service answers queries against the active corpus snapshot.
type Service struct {
	extractor Extractor
	retriever Retriever
	reranker  Reranker
	recorder  Recorder
	model     string
	opts      Options
	logger    *zap.Logger

	snap atomic.Pointer[corpus.Snapshot]
}

// New creates the orchestrator. model is the query embedder's identity; snapshots
// built with another model are refused.
func New(
	extractor Extractor, retriever Retriever, reranker Reranker, recorder Recorder,
	model string, opts Options, logger *zap.Logger,
) *Service {
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	if opts.MaxBudget < opts.Budget {
		opts.MaxBudget = opts.Budget
	}
	opts.OverFetchFactor = max(opts.OverFetchFactor, retrieve.MinOverFetchFactor)

	return &Service{
		extractor: extractor,
		retriever: retriever,
		reranker:  reranker,
		recorder:  recorder,
		model:     model,
		opts:      opts,
		logger:    logger,
	}
}

// Swap installs snap as the active corpus and returns the previous one.
// In-flight requests keep the snapshot they started with.
func (s *Service) Swap(snap *corpus.Snapshot) (*corpus.Snapshot, error) {
	if snap == nil {
		return nil, domain.ErrCorpusNotLoaded
	}
	if s.model != "" && snap.Model() != s.model {
		return nil, fmt.Errorf("%w: snapshot built with %q, queries use %q",
			domain.ErrEmbeddingModelMismatch, snap.Model(), s.model)
	}
	old := s.snap.Swap(snap)
	metrics.CorpusRecords.Set(float64(snap.Len()))
	return old, nil
}

// Snapshot returns the active corpus, nil before the first Swap.
func (s *Service) Snapshot() *corpus.Snapshot {
	return s.snap.Load()
}

// Answer runs extract, retrieve, rerank and trace for q. budget <= 0 uses the default.
// Only a blank query, a missing corpus or a query embedding failure return an error.
func (s *Service) Answer(ctx context.Context, q string, budget int) (Result, error) {
	if strings.TrimSpace(q) == "" {
		metrics.PipelineRequestsTotal.WithLabelValues("invalid").Inc()
		return Result{}, domain.ErrEmptyQuery
	}
	snap := s.snap.Load()
	if snap == nil {
		metrics.PipelineRequestsTotal.WithLabelValues("error").Inc()
		return Result{}, domain.ErrCorpusNotLoaded
	}
	if budget <= 0 {
		budget = s.opts.Budget
	}
	budget = min(budget, s.opts.MaxBudget)

	log := logger.FromContext(ctx)

	start := time.Now()
	extracted := s.extractor.Extract(ctx, q)
	observeStage("extract", start)
	if extracted.Fallback {
		metrics.PipelineFallbacksTotal.WithLabelValues("extract").Inc()
	}

	start = time.Now()
	retrieved, err := s.retriever.Retrieve(ctx, snap, q, extracted.Value,
		retrieve.FetchCount(budget, s.opts.OverFetchFactor))
	observeStage("retrieve", start)
	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues("error").Inc()
		log.Error("Retrieval failed", zap.Error(err))
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}
	if retrieved.Relaxed {
		metrics.PipelineFallbacksTotal.WithLabelValues("duration_filter").Inc()
	}

	start = time.Now()
	reranked := s.reranker.Rerank(ctx, q, retrieved.Candidates, budget)
	observeStage("rerank", start)
	if reranked.Fallback {
		metrics.PipelineFallbacksTotal.WithLabelValues("rerank").Inc()
	}

	final := candidate.Head(reranked.Value, budget)

	tr := s.recorder.Record(domtrace.Input{
		Query:             q,
		Parameters:        extracted.Value,
		Vector:            retrieved.Candidates,
		Reranked:          reranked.Value,
		Final:             final,
		ExtractFallback:   extracted.ReasonString(),
		RerankFallback:    reranked.ReasonString(),
		ConstraintRelaxed: retrieved.Relaxed,
	})

	metrics.PipelineRequestsTotal.WithLabelValues("ok").Inc()
	log.Debug("Recommendation answered",
		zap.String("trace_id", tr.ID()),
		zap.Int("candidates", len(retrieved.Candidates)),
		zap.Int("results", len(final)),
		zap.Bool("constraint_relaxed", retrieved.Relaxed),
		zap.Bool("extract_degraded", extracted.Fallback),
		zap.Bool("rerank_degraded", reranked.Fallback),
	)

	return Result{
		Recommendations:   final,
		TraceID:           tr.ID(),
		Parameters:        extracted.Value,
		ConstraintRelaxed: retrieved.Relaxed,
		ExtractDegraded:   extracted.Fallback,
		RerankDegraded:    reranked.Fallback,
	}, nil
}

func observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
