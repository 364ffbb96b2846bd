package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank recommendation query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidCorpus signals a corpus source with missing or unparsable columns.
	ErrInvalidCorpus = errors.New("invalid corpus")
	// ErrEmptyCorpus signals a corpus source without records.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingModelMismatch signals a snapshot built with a different embedding model.
	ErrEmbeddingModelMismatch = errors.New("embedding model mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a text completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrInvalidLLMOutput signals LLM output that could not be parsed or validated.
	ErrInvalidLLMOutput = errors.New("invalid llm output")
	// ErrCorpusNotLoaded signals a recommendation attempt before the first snapshot.
	ErrCorpusNotLoaded = errors.New("corpus not loaded")
)

// CorpusError wraps ErrInvalidCorpus with the offending row and column.
type CorpusError struct {
	Row    int
	Column string
	Reason string
}

func (e *CorpusError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d, column %q: %s", ErrInvalidCorpus.Error(), e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: column %q: %s", ErrInvalidCorpus.Error(), e.Column, e.Reason)
}

func (e *CorpusError) Unwrap() error { return ErrInvalidCorpus }

// NewCorpusError creates a corpus validation error. row is 1-based; 0 means header level.
func NewCorpusError(row int, column, reason string) error {
	return &CorpusError{Row: row, Column: column, Reason: reason}
}
