package chi

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest             ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized           ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed       ErrorResponseCode = "validation_failed"
	ErrorResponseCodeVectorDimMismatch      ErrorResponseCode = "vector_dimension_mismatch"
	ErrorResponseCodeEmbeddingProviderError ErrorResponseCode = "embedding_provider_error"
	ErrorResponseCodeStoreError             ErrorResponseCode = "store_error"
	ErrorResponseCodeTimeout                ErrorResponseCode = "timeout"
	ErrorResponseCodeInternalError          ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchResultItem is one element of the GET /api/search response array.
type SearchResultItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Score    float64 `json:"score"`
	FTSScore float64 `json:"fts_score"`
	SemScore float64 `json:"sem_score"`
}

// SearchParams are the GET /api/search query parameters.
type SearchParams struct {
	Q     string  `form:"q"`
	Mode  *string `form:"mode"`
	Limit *int    `form:"limit"`
}

// CreateDocumentRequest is the POST /api/documents body.
type CreateDocumentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BatchCreateDocumentsRequest is the POST /api/documents/batch body.
type BatchCreateDocumentsRequest struct {
	Items []CreateDocumentRequest `json:"items"`
}

// BatchResultItemStatus is the per-item outcome of a batch insert.
type BatchResultItemStatus string

// Batch item statuses.
const (
	BatchResultItemStatusOk    BatchResultItemStatus = "ok"
	BatchResultItemStatusError BatchResultItemStatus = "error"
)

// BatchResultItem reports one batch entry, in input order.
type BatchResultItem struct {
	Index  int                   `json:"index"`
	Status BatchResultItemStatus `json:"status"`
	ID     *int64                `json:"id,omitempty"`
	Error  *ErrorResponse        `json:"error,omitempty"`
}

// BatchResponse is the POST /api/documents/batch response.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
