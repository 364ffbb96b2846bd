package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Requests are still served.
	Degraded Status = "degraded"
	// Unhealthy indicates the pipeline cannot answer requests.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status        Status
	Checks        map[string]CheckResult
	CorpusRecords int
}

// Service coordinates health checks.
type Service struct {
	corpus    SnapshotSource
	cache     CachePinger
	embedding EmbeddingChecker
}

// New creates a Service. cache and embedding can be nil.
func New(corpus SnapshotSource, cache CachePinger, embedding EmbeddingChecker) *Service {
	return &Service{corpus: corpus, cache: cache, embedding: embedding}
}

// Check runs health checks against all components.
// A missing corpus makes the service unhealthy; other failures only degrade it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var records int

	if snap := s.corpus.Snapshot(); snap != nil {
		checks["corpus"] = CheckOK
		records = snap.Len()
	} else {
		checks["corpus"] = CheckError
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["corpus"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, CorpusRecords: records}
}
