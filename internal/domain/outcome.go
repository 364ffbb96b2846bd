package domain

// Outcome carries either a successful value or a fallback value plus the reason
// the primary path failed. Callers branch on Fallback instead of assuming success.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Reason   error
}

// Succeeded wraps a value produced by the primary path.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// FellBack wraps a fallback value together with the failure that caused it.
func FellBack[T any](v T, reason error) Outcome[T] {
	return Outcome[T]{Value: v, Fallback: true, Reason: reason}
}

// ReasonString returns the failure reason text, or "" on success.
func (o Outcome[T]) ReasonString() string {
	if o.Reason == nil {
		return ""
	}
	return o.Reason.Error()
}
