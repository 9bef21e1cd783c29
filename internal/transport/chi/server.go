package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	domdoc "github.com/kailas-cloud/hybridsearch/internal/domain/document"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
)

// Route paths.
const (
	PathSearch         = "/api/search"
	PathDocuments      = "/api/documents"
	PathDocumentsBatch = "/api/documents/batch"
	PathHealth         = "/api/health"
	PathMetrics        = "/metrics"
)

const (
	maxBatchSize    = 100
	maxRequestBytes = 1 << 20

	embeddingTokensHeader = "X-Embedding-Tokens"
)

// Searcher runs a validated search request.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// DocumentInserter stores new documents.
type DocumentInserter interface {
	Insert(ctx context.Context, title, body string) (domdoc.Document, error)
	InsertBatch(ctx context.Context, drafts []documentuc.Draft) []documentuc.Result
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the HTTP API.
type Server struct {
	search        Searcher
	documents     DocumentInserter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	documents DocumentInserter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrSearchTimeout, http.StatusGatewayTimeout, ErrorResponseCodeTimeout),
		// Order matters: store-side mismatches are 503, provider-side mismatches 500.
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, ErrorResponseCodeStoreError),
		sentinelHandler(domain.ErrVectorDimMismatch,
			http.StatusInternalServerError, ErrorResponseCodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorResponseCodeEmbeddingProviderError),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get(PathSearch, s.SearchDocuments)
	r.Post(PathDocuments, s.CreateDocument)
	r.Post(PathDocumentsBatch, s.BatchCreateDocuments)
	r.Get(PathHealth, s.HealthCheck)
	r.Get(PathMetrics, s.Metrics)
}

// SearchDocuments handles GET /api/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	searchReq, err := searchRequestFromParams(params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, items)
}

// CreateDocument handles POST /api/documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	doc, err := s.documents.Insert(ctx, req.Title, req.Body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	w.Header().Set("Location", PathDocuments+"/"+strconv.FormatInt(doc.ID(), 10))
	writeJSON(w, http.StatusCreated, documentToAPI(&doc))
}

// BatchCreateDocuments handles POST /api/documents/batch.
func (s *Server) BatchCreateDocuments(w http.ResponseWriter, r *http.Request) {
	var req BatchCreateDocumentsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "items must not be empty")
		return
	}
	if len(req.Items) > maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("batch size exceeds %d", maxBatchSize))
		return
	}

	drafts := make([]documentuc.Draft, len(req.Items))
	for i, it := range req.Items {
		drafts[i] = documentuc.Draft{Title: it.Title, Body: it.Body}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.documents.InsertBatch(ctx, drafts)

	resp := BatchResponse{Items: make([]BatchResultItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToAPI(i, res)
		if res.Err != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /api/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var params SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "mode", query, &params.Mode); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter mode: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return params, nil
}

func searchRequestFromParams(p SearchParams) (request.Request, error) {
	var m mode.Mode
	if p.Mode != nil {
		parsed, err := mode.Parse(*p.Mode)
		if err != nil {
			return request.Request{}, domain.NewValidationError("mode", err.Error())
		}
		m = parsed
	}

	// An explicit limit of 0 is invalid; request.New treats 0 as "not set".
	limit := 0
	if p.Limit != nil {
		if *p.Limit <= 0 || *p.Limit > request.MaxLimit {
			return request.Request{}, domain.NewValidationError("limit",
				fmt.Sprintf("must be between 1 and %d", request.MaxLimit))
		}
		limit = *p.Limit
	}

	r, err := request.New(p.Q, m, limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return r, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set(embeddingTokensHeader, strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors keep their field detail.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrSearchTimeout,
		domain.ErrEmbeddingProviderError,
		domain.ErrStore,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func searchResultToAPI(r *result.Result) SearchResultItem {
	return SearchResultItem{
		ID:       r.ID(),
		Title:    r.Title(),
		Body:     r.Body(),
		Score:    r.Score(),
		FTSScore: r.LexicalScore(),
		SemScore: r.SemanticScore(),
	}
}

func documentToAPI(doc *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		ID:    doc.ID(),
		Title: doc.Title(),
		Body:  doc.Body(),
	}
}

func batchResultToAPI(index int, res documentuc.Result) BatchResultItem {
	if res.Err != nil {
		return BatchResultItem{
			Index:  index,
			Status: BatchResultItemStatusError,
			Error: &ErrorResponse{
				Code:    batchErrorCode(res.Err),
				Message: safeDomainMessage(res.Err),
			},
		}
	}
	id := res.Document.ID()
	return BatchResultItem{Index: index, Status: BatchResultItemStatusOk, ID: &id}
}

func batchErrorCode(err error) ErrorResponseCode {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return ErrorResponseCodeValidationFailed
	case errors.Is(err, domain.ErrStore):
		return ErrorResponseCodeStoreError
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return ErrorResponseCodeVectorDimMismatch
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return ErrorResponseCodeEmbeddingProviderError
	default:
		return ErrorResponseCodeInternalError
	}
}
