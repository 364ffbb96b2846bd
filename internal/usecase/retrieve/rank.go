package retrieve

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/candidate"
	"github.com/kailas-cloud/assessrec/internal/domain/corpus"
	"github.com/kailas-cloud/assessrec/internal/domain/vector"
)

// Result is the similarity-ranked candidate list.
type Result struct {
	Candidates []candidate.Candidate
	// Relaxed is set when the duration filter matched nothing and was dropped.
	Relaxed bool
}

// Rank scores every snapshot row against qvec and returns at most fetchCount
// candidates, highest similarity first, ties in corpus order. When maxDuration > 0
// only records with duration <= maxDuration are kept, unless none qualify.
// Rank is deterministic for identical inputs.
func Rank(snap *corpus.Snapshot, qvec []float32, maxDuration, fetchCount int) (Result, error) {
	if len(qvec) != snap.Dims() {
		return Result{}, fmt.Errorf("%w: query has %d dims, corpus has %d",
			domain.ErrVectorDimMismatch, len(qvec), snap.Dims())
	}

	type scored struct {
		row   int
		score float64
	}

	qNorm := vector.Norm(qvec)
	ranked := make([]scored, snap.Len())
	for i := range ranked {
		ranked[i] = scored{row: i, score: snap.Similarity(i, qvec, qNorm)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	sourceRank := make([]int, snap.Len())
	for pos, s := range ranked {
		sourceRank[s.row] = pos
	}

	kept := ranked
	relaxed := false
	if maxDuration > 0 {
		filtered := make([]scored, 0, len(ranked))
		for _, s := range ranked {
			if snap.Record(s.row).Duration() <= maxDuration {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) > 0 {
			kept = filtered
		} else {
			relaxed = true
		}
	}

	if fetchCount < 0 {
		fetchCount = 0
	}
	n := min(fetchCount, len(kept))

	out := make([]candidate.Candidate, n)
	for i := range n {
		s := kept[i]
		out[i] = candidate.New(snap.Record(s.row), s.score, sourceRank[s.row])
	}

	return Result{Candidates: out, Relaxed: relaxed}, nil
}
