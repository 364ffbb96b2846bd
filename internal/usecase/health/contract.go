package health

import (
	"context"

	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
)

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// SnapshotSource exposes the currently served corpus.
type SnapshotSource interface {
	Snapshot() *corpus.Snapshot
}
