// Package corpus holds the immutable snapshot the retriever ranks against.
package corpus

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
	"github.com/kailas-cloud/assessrec/internal/domain/vector"
)

// Snapshot pairs catalog records with their embedding rows. Row i of the matrix
// embeds record i. A snapshot is never mutated; reloads build a new one.
type Snapshot struct {
	records []assessment.Record
	matrix  [][]float32
	norms   []float64
	model   string
	dims    int
	builtAt time.Time
}

// New validates alignment and creates a snapshot. Inputs are copied.
func New(records []assessment.Record, matrix [][]float32, model string) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if len(matrix) != len(records) {
		return nil, fmt.Errorf("%w: %d records, %d embedding rows",
			domain.ErrVectorDimMismatch, len(records), len(matrix))
	}

	dims := len(matrix[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: row 0 is empty", domain.ErrVectorDimMismatch)
	}

	rows := make([][]float32, len(matrix))
	norms := make([]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: row %d has %d dims, expected %d",
				domain.ErrVectorDimMismatch, i, len(row), dims)
		}
		rows[i] = append([]float32(nil), row...)
		norms[i] = vector.Norm(row)
	}

	recs := make([]assessment.Record, len(records))
	copy(recs, records)

	return &Snapshot{
		records: recs,
		matrix:  rows,
		norms:   norms,
		model:   model,
		dims:    dims,
		builtAt: time.Now().UTC(),
	}, nil
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Dims returns the embedding dimension.
func (s *Snapshot) Dims() int { return s.dims }

// Model returns the identity of the embedding model the matrix was built with.
func (s *Snapshot) Model() string { return s.model }

// BuiltAt returns when the snapshot was created.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Record returns the record at row i.
func (s *Snapshot) Record(i int) assessment.Record { return s.records[i] }

// Records returns a copy of all records in row order.
func (s *Snapshot) Records() []assessment.Record {
	out := make([]assessment.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Similarity returns the cosine similarity between q and row i.
// q must have Dims() elements; qNorm is its precomputed norm.
func (s *Snapshot) Similarity(i int, q []float32, qNorm float64) float64 {
	return vector.CosineWithNorms(q, s.matrix[i], qNorm, s.norms[i])
}
