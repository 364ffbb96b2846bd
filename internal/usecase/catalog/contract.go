package catalog

import (
	"context"

	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
)

// Loader reads assessment records from a persisted source.
// It must fail on the first invalid row rather than return partial data.
type Loader interface {
	Load(ctx context.Context) ([]assessment.Record, error)
}
