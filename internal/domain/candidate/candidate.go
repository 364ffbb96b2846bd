// Package candidate holds the per-request join of a record with its similarity score.
package candidate

import "github.com/kailas-cloud/assessrec/internal/domain/assessment"

// Candidate is a record ranked by the vector retriever.
type Candidate struct {
	record     assessment.Record
	score      float64
	sourceRank int
}

// New creates a candidate. sourceRank is the 0-based position in the similarity ranking.
func New(record assessment.Record, score float64, sourceRank int) Candidate {
	return Candidate{record: record, score: score, sourceRank: sourceRank}
}

// Record returns the catalog entry.
func (c Candidate) Record() assessment.Record { return c.record }

// Score returns the cosine similarity to the query.
func (c Candidate) Score() float64 { return c.score }

// SourceRank returns the position in the similarity ranking.
func (c Candidate) SourceRank() int { return c.sourceRank }

// Index returns the corpus row of the record.
func (c Candidate) Index() int { return c.record.ID() }

// Titles lists candidate titles in order.
func Titles(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.record.Title()
	}
	return out
}

// Head returns at most n leading candidates as a new slice.
func Head(cs []Candidate, n int) []Candidate {
	if n < 0 {
		n = 0
	}
	if n > len(cs) {
		n = len(cs)
	}
	out := make([]Candidate, n)
	copy(out, cs[:n])
	return out
}
