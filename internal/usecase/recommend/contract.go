package recommend

import (
	"context"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/candidate"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
	domtrace "github.com/kailas-cloud/assessrec/internal/domain/trace"
	"github.com/kailas-cloud/assessrec/internal/usecase/retrieve"
)

// Extractor turns a query into parameters, degrading to neutral ones.
type Extractor interface {
	Extract(ctx context.Context, q string) domain.Outcome[query.Parameters]
}

// Retriever ranks a snapshot by similarity to the query.
type Retriever interface {
	Retrieve(
		ctx context.Context, snap *corpus.Snapshot, q string, params query.Parameters, fetchCount int,
	) (retrieve.Result, error)
}

// Reranker reorders candidates, degrading to similarity order.
type Reranker interface {
	Rerank(ctx context.Context, q string, cands []candidate.Candidate, budget int) domain.Outcome[[]candidate.Candidate]
}

// Recorder stores the audit trail and never fails.
type Recorder interface {
	Record(in domtrace.Input) domtrace.Trace
}
