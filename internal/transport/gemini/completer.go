package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kailas-cloud/assessrec/internal/domain"
)

// Completer implements domain.Completer on Gemini generateContent.
type Completer struct {
	models      contentGenerator
	model       string
	temperature *float32
	maxTokens   int32
}

// CompleterConfig holds generation settings. Temperature < 0 leaves the model default.
type CompleterConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewCompleter creates a completer over client.Models.
func NewCompleter(client *genai.Client, cfg CompleterConfig) *Completer {
	return newCompleter(client.Models, cfg)
}

func newCompleter(models contentGenerator, cfg CompleterConfig) *Completer {
	c := &Completer{
		models:    models,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens), //nolint:gosec // bounded by config validation
	}
	if cfg.Temperature >= 0 {
		c.temperature = genai.Ptr(cfg.Temperature)
	}
	return c
}

// Complete sends the prompt as a single user turn and joins the text parts of the answer.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: c.temperature}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", wrapAPIError("completion", err, domain.ErrLLMProviderError)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(strings.TrimSpace(part.Text))
		}
		// first candidate with text wins
		if b.Len() > 0 {
			break
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty response: %w", domain.ErrLLMProviderError)
	}
	return b.String(), nil
}
