package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// Options configures the decorator.
type Options struct {
	// ChunkSize caps texts per provider request; <= 0 uses DefaultMaxAPIBatchSize.
	ChunkSize int
	// Timeout bounds every provider request (each chunk separately); 0 disables it.
	Timeout time.Duration
}

// InstrumentedEmbedder wraps an Embedder with logging, per-call timeouts and API-sized
// batch chunking. Transport metrics (requests, duration, tokens) are recorded by the
// provider adapters.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	model     string
	chunkSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, opts Options, logger *zap.Logger,
) *InstrumentedEmbedder {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultMaxAPIBatchSize
	}
	return &InstrumentedEmbedder{
		inner:     inner,
		provider:  provider,
		model:     model,
		chunkSize: chunkSize,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// withTimeout derives the context for one provider request.
func (p *InstrumentedEmbedder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// wrapTimeout marks an expired per-call deadline as a provider failure.
func wrapTimeout(callCtx context.Context, err error) error {
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout: %w", domain.ErrEmbeddingProviderError, err)
	}
	return err
}

// Model returns the embedding model identity.
func (p *InstrumentedEmbedder) Model() string { return p.model }

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	callCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	result, err := p.inner.Embed(callCtx, text)

	duration := time.Since(start)

	if err != nil {
		err = wrapTimeout(callCtx, err)
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into API-sized chunks. Any chunk failure fails the whole call.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	var all [][]float32
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += p.chunkSize {
		end := min(offset+p.chunkSize, len(texts))
		chunk := texts[offset:end]

		callCtx, cancel := p.withTimeout(ctx)
		res, err := domain.EmbedAll(callCtx, p.inner, chunk)
		if err != nil {
			err = wrapTimeout(callCtx, err)
		}
		cancel()
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed (chunk %d): %w", offset, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"%w: chunk %d returned %d vectors for %d texts",
				domain.ErrVectorDimMismatch, offset, len(res.Embeddings), len(chunk),
			)
		}

		all = append(all, res.Embeddings...)
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", totalTokens),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   all,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}
