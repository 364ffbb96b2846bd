package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/metrics"
)

const provider = "gemini"

// Embedder implements domain.Embedder and domain.BatchEmbedder on Gemini embedContent.
// The API does not report token usage, so results carry zero tokens.
type Embedder struct {
	models     contentEmbedder
	model      string
	dimensions int32
	taskType   string
	logger     *zap.Logger
}

// EmbedderConfig holds embedding settings.
type EmbedderConfig struct {
	Model      string
	Dimensions int
	// TaskType is forwarded as is, e.g. SEMANTIC_SIMILARITY or RETRIEVAL_QUERY.
	TaskType string
	Logger   *zap.Logger
}

// NewEmbedder creates an embedder over client.Models.
func NewEmbedder(client *genai.Client, cfg EmbedderConfig) *Embedder {
	return newEmbedder(client.Models, cfg)
}

func newEmbedder(models contentEmbedder, cfg EmbedderConfig) *Embedder {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		models:     models,
		model:      cfg.Model,
		dimensions: int32(cfg.Dimensions), //nolint:gosec // bounded by config validation
		taskType:   cfg.TaskType,
		logger:     logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder with one embedContent call.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(e.dimensions)
	}

	start := time.Now()
	resp, err := e.models.EmbedContent(ctx, e.model, contents, cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.BatchEmbeddingResult{}, wrapAPIError("embedding", err, domain.ErrEmbeddingProviderError)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "count_mismatch").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingProviderError, got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
			metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("empty embedding for input %d: %w",
				i, domain.ErrEmbeddingProviderError)
		}
		out[i] = emb.Values
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	e.logger.Debug("Gemini embedded",
		zap.Int("texts", len(texts)),
		zap.Duration("duration", duration),
	)

	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}
