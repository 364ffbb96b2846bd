package rerank

import "context"

// Completer sends a prompt to a text completion provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
