// Package completion decorates text completion providers.
package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/metrics"
)

// Options configures the decorator. Zero values disable the feature.
type Options struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// InstrumentedCompleter bounds every call with a timeout and a token-bucket limiter,
// records metrics and logs failures. All errors wrap domain.ErrLLMProviderError.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps a completer.
func NewInstrumentedCompleter(
	inner domain.Completer, provider, model string, opts Options, logger *zap.Logger,
) *InstrumentedCompleter {
	c := &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		timeout:  opts.Timeout,
		logger:   logger,
	}
	if opts.RequestsPerSec > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), burst)
	}
	return c
}

// Complete sends the prompt once. There is no retry.
func (c *InstrumentedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.fail("rate_limited", 0, err)
			return "", fmt.Errorf("%w: rate limit: %w", domain.ErrLLMProviderError, err)
		}
	}

	start := time.Now()
	text, err := c.inner.Complete(ctx, prompt)
	duration := time.Since(start)

	metrics.LLMRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	if err != nil {
		errType := "api_error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			errType = "timeout"
		}
		c.fail(errType, duration, err)
		if errors.Is(err, domain.ErrLLMProviderError) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrLLMProviderError, err)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	c.logger.Debug("Completion request completed",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("response_len", len(text)),
	)

	return text, nil
}

func (c *InstrumentedCompleter) fail(errType string, duration time.Duration, err error) {
	metrics.LLMRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
	metrics.LLMErrorsTotal.WithLabelValues(c.provider, c.model, errType).Inc()
	c.logger.Warn("Completion request failed",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.String("error_type", errType),
		zap.Duration("duration", duration),
		zap.Error(err),
	)
}
