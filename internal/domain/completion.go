package domain

import "context"

// Completer is the text-completion contract. The returned text has no guaranteed
// structure; callers parse it through the llmresponse boundary.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
