// Package trace holds the per-request audit record of the recommendation pipeline.
package trace

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/assessrec/internal/domain/candidate"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
)

const idTimeLayout = "20060102T150405.000000Z"

// NewID returns a trace id: UTC timestamp with microseconds, a dash and a random UUID.
func NewID(now time.Time) string {
	return now.UTC().Format(idTimeLayout) + "-" + uuid.NewString()
}

// Input is everything the pipeline produced for one request.
type Input struct {
	Query             string
	Parameters        query.Parameters
	Vector            []candidate.Candidate
	Reranked          []candidate.Candidate
	Final             []candidate.Candidate
	ExtractFallback   string
	RerankFallback    string
	ConstraintRelaxed bool
}

// Trace is immutable after New.
type Trace struct {
	id                string
	timestamp         time.Time
	query             string
	params            query.Parameters
	vector            []candidate.Candidate
	reranked          []candidate.Candidate
	final             []candidate.Candidate
	extractFallback   string
	rerankFallback    string
	constraintRelaxed bool
}

// New creates a trace, copying the candidate lists.
func New(id string, ts time.Time, in Input) Trace {
	return Trace{
		id:                id,
		timestamp:         ts.UTC(),
		query:             in.Query,
		params:            in.Parameters,
		vector:            candidate.Head(in.Vector, len(in.Vector)),
		reranked:          candidate.Head(in.Reranked, len(in.Reranked)),
		final:             candidate.Head(in.Final, len(in.Final)),
		extractFallback:   in.ExtractFallback,
		rerankFallback:    in.RerankFallback,
		constraintRelaxed: in.ConstraintRelaxed,
	}
}

// ID returns the trace id.
func (t Trace) ID() string { return t.id }

// Timestamp returns the creation time.
func (t Trace) Timestamp() time.Time { return t.timestamp }

// Query returns the raw user query.
func (t Trace) Query() string { return t.query }

// Parameters returns the extracted parameters.
func (t Trace) Parameters() query.Parameters { return t.params }

// Vector returns the similarity-ranked candidates.
func (t Trace) Vector() []candidate.Candidate { return candidate.Head(t.vector, len(t.vector)) }

// Reranked returns the reranker output.
func (t Trace) Reranked() []candidate.Candidate { return candidate.Head(t.reranked, len(t.reranked)) }

// Final returns the candidates returned to the caller.
func (t Trace) Final() []candidate.Candidate { return candidate.Head(t.final, len(t.final)) }

// ExtractFallback returns why extraction degraded, "" if it did not.
func (t Trace) ExtractFallback() string { return t.extractFallback }

// RerankFallback returns why reranking degraded, "" if it did not.
func (t Trace) RerankFallback() string { return t.rerankFallback }

// ConstraintRelaxed reports whether the duration filter was dropped.
func (t Trace) ConstraintRelaxed() bool { return t.constraintRelaxed }

// MarshalLogObject writes the trace as structured log fields.
func (t Trace) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("trace_id", t.id)
	enc.AddTime("timestamp", t.timestamp)
	enc.AddString("query", t.query)
	if err := enc.AddObject("parameters", parameters(t.params)); err != nil {
		return err
	}
	if err := enc.AddArray("vector_results", stage(t.vector)); err != nil {
		return err
	}
	if err := enc.AddArray("reranked_results", stage(t.reranked)); err != nil {
		return err
	}
	if err := enc.AddArray("final_results", stage(t.final)); err != nil {
		return err
	}
	if t.extractFallback != "" {
		enc.AddString("extract_fallback", t.extractFallback)
	}
	if t.rerankFallback != "" {
		enc.AddString("rerank_fallback", t.rerankFallback)
	}
	enc.AddBool("constraint_relaxed", t.constraintRelaxed)
	return nil
}

type parameters query.Parameters

func (p parameters) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	qp := query.Parameters(p)
	if limit, ok := qp.DurationLimit(); ok {
		enc.AddInt("duration_limit", limit)
	}
	if err := enc.AddArray("skills", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, s := range qp.Skills() {
			arr.AppendString(s)
		}
		return nil
	})); err != nil {
		return err
	}
	if lvl := qp.Level(); lvl != "" {
		enc.AddString("level", lvl)
	}
	return nil
}

type stage []candidate.Candidate

func (s stage) MarshalLogArray(arr zapcore.ArrayEncoder) error {
	for i, c := range s {
		if err := arr.AppendObject(entry{rank: i + 1, c: c}); err != nil {
			return err
		}
	}
	return nil
}

type entry struct {
	rank int
	c    candidate.Candidate
}

func (e entry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rank", e.rank)
	enc.AddString("title", e.c.Record().Title())
	enc.AddFloat64("score", e.c.Score())
	return nil
}
