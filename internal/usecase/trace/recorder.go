// Package trace records the audit trail of each recommendation request.
package trace

import (
	"time"

	"go.uber.org/zap"

	domtrace "github.com/kailas-cloud/assessrec/internal/domain/trace"
	"github.com/kailas-cloud/assessrec/internal/metrics"
)

// Recorder builds traces and fans them out to sinks.
type Recorder struct {
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder writing to every sink in order.
func NewRecorder(logger *zap.Logger, sinks ...Sink) *Recorder {
	return &Recorder{sinks: sinks, logger: logger, now: time.Now}
}

// Record stores a trace and returns its id. Sink failures are logged and counted,
// never returned.
func (r *Recorder) Record(in domtrace.Input) domtrace.Trace {
	now := r.now()
	t := domtrace.New(domtrace.NewID(now), now, in)

	for _, s := range r.sinks {
		if err := s.Write(t); err != nil {
			metrics.TraceSinkErrorsTotal.WithLabelValues(s.Name()).Inc()
			r.logger.Warn("Trace sink write failed",
				zap.String("sink", s.Name()),
				zap.String("trace_id", t.ID()),
				zap.Error(err),
			)
		}
	}
	return t
}
