// Package retrieve ranks the corpus by cosine similarity to the query.
package retrieve

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
)

// MinOverFetchFactor is the lowest ratio of fetched candidates to the result budget.
const MinOverFetchFactor = 2

// FetchCount returns how many candidates to hand to the reranker for a budget.
func FetchCount(budget, factor int) int {
	return budget * max(factor, MinOverFetchFactor)
}

// Service embeds the query and ranks a snapshot against it.
type Service struct {
	embed Embedder
}

// New creates a retrieval service.
func New(embed Embedder) *Service {
	return &Service{embed: embed}
}

// Retrieve embeds q and ranks snap. An embedding failure is fatal to the request
// and wraps domain.ErrEmbeddingProviderError.
func (s *Service) Retrieve(
	ctx context.Context, snap *corpus.Snapshot, q string, params query.Parameters, fetchCount int,
) (Result, error) {
	emb, err := s.embed.Embed(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingProviderError) {
			return Result{}, fmt.Errorf("vectorize query: %w", err)
		}
		return Result{}, fmt.Errorf("%w: vectorize query: %w", domain.ErrEmbeddingProviderError, err)
	}

	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	limit, _ := params.DurationLimit()
	res, err := Rank(snap, emb.Embedding, limit, fetchCount)
	if err != nil {
		return Result{}, fmt.Errorf("rank: %w", err)
	}
	return res, nil
}
