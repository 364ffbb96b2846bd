package trace

import domtrace "github.com/kailas-cloud/assessrec/internal/domain/trace"

// Sink persists trace entries. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Write(t domtrace.Trace) error
}
