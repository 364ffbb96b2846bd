package retrieve

import (
	"context"

	"github.com/kailas-cloud/assessrec/internal/domain"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
