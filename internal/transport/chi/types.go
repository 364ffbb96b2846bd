package chi

// ErrorCode is a machine-readable error identifier in API responses.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeRequestTooLarge        ErrorCode = "request_too_large"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeEmptyQuery             ErrorCode = "empty_query"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeCorpusNotLoaded        ErrorCode = "corpus_not_loaded"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query string `json:"query"`
	// Budget is optional; zero means the configured default.
	Budget int `json:"budget,omitempty"`
}

// Recommendation is one assessment in the response.
type Recommendation struct {
	Name                 string `json:"name"`
	URL                  string `json:"url"`
	RemoteTestingSupport string `json:"remote_testing_support"`
	AdaptiveSupport      string `json:"adaptive_support"`
	Duration             int    `json:"duration"`
	TestType             string `json:"test_type"`
}

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	Recommendations   []Recommendation `json:"recommendations"`
	TraceID           string           `json:"trace_id"`
	ConstraintRelaxed bool             `json:"constraint_relaxed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	CorpusRecords int               `json:"corpus_records"`
}
