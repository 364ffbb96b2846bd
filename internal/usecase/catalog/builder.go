// Package catalog builds corpus snapshots from a loader and an embedder.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
)

// Builder loads the catalog and embeds every record in one batch.
type Builder struct {
	loader Loader
	embed  domain.Embedder
	model  string
	logger *zap.Logger
}

// NewBuilder creates a snapshot builder. model is stamped on every snapshot.
func NewBuilder(loader Loader, embed domain.Embedder, model string, logger *zap.Logger) *Builder {
	return &Builder{loader: loader, embed: embed, model: model, logger: logger}
}

// Build returns a complete snapshot or an error; there is no partial result.
func (b *Builder) Build(ctx context.Context) (*corpus.Snapshot, error) {
	start := time.Now()

	records, err := b.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.EmbeddingText()
	}

	res, err := domain.EmbedAll(ctx, b.embed, texts)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return nil, fmt.Errorf("embed catalog: %w", err)
	}

	snap, err := corpus.New(records, res.Embeddings, b.model)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	b.logger.Info("Corpus snapshot built",
		zap.Int("records", snap.Len()),
		zap.Int("dimensions", snap.Dims()),
		zap.String("model", snap.Model()),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return snap, nil
}
