// Package chi exposes the REST and WebSocket API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/db"
	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	"github.com/raseed-cloud/raseed/internal/session"
	batchuc "github.com/raseed-cloud/raseed/internal/usecase/batch"
	healthuc "github.com/raseed-cloud/raseed/internal/usecase/health"
	queryuc "github.com/raseed-cloud/raseed/internal/usecase/query"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ReceiptService ingests and reads receipts.
type ReceiptService interface {
	Ingest(ctx context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error)
	Get(ctx context.Context, id string) (domrcpt.Receipt, error)
	List(ctx context.Context, userID, cursor string, limit int) ([]domrcpt.Receipt, int, string, error)
}

// BatchService ingests receipts in bulk with per-item results.
type BatchService interface {
	Ingest(ctx context.Context, items []receiptuc.Input) []batchuc.Result
	MaxBatchSize() int
}

// QueryService answers natural-language questions.
type QueryService interface {
	Ask(ctx context.Context, identity, question string, emit func(notice.Notice)) (*queryuc.Result, error)
	MaxResultReceipts() int
}

// PassService lists wallet passes.
type PassService interface {
	ListForUser(ctx context.Context, identity string) ([]pass.Pass, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements the HTTP API.
type Server struct {
	receipts      ReceiptService
	batches       BatchService
	queries       QueryService
	passes        PassService
	health        HealthService
	sessions      *session.Registry
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	receipts ReceiptService,
	batches BatchService,
	queries QueryService,
	passes PassService,
	health HealthService,
	sessions *session.Registry,
	logger *zap.Logger,
) *Server {
	s := &Server{
		receipts: receipts,
		batches:  batches,
		queries:  queries,
		passes:   passes,
		health:   health,
		sessions: sessions,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIdentityFormat, http.StatusBadRequest, codeIdentityFormat),
		sentinelHandler(domain.ErrReceiptNotFound, http.StatusNotFound, codeReceiptNotFound),
		sentinelHandler(domain.ErrPassNotFound, http.StatusNotFound, codePassNotFound),
		sentinelHandler(domain.ErrQueryExecution, http.StatusInternalServerError, codeExecutionError),
		sentinelHandler(domain.ErrLLMProvider, http.StatusBadGateway, codeLLMProvider),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/receipts", s.IngestReceipt)
		r.Post("/receipts/batch", s.BatchIngest)
		r.Get("/receipts", s.ListReceipts)
		r.Get("/receipts/{id}", s.GetReceipt)
		r.Post("/query", s.Query)
		r.Get("/users/{email}/passes", s.ListPasses)
	})

	r.Get("/ws", s.ServeWS)
	r.Get("/ws/{user_id}", s.ServeWS)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// IngestReceipt handles POST /v1/receipts.
func (s *Server) IngestReceipt(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "user_id is required")
		return
	}

	rec, issued, err := s.receipts.Ingest(r.Context(), receiptuc.Input{
		ID:       req.ID,
		UserID:   req.UserID,
		Vendor:   req.Vendor,
		Category: req.Category,
		Items:    req.Items,
		Total:    req.Total,
		Date:     req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIdentityFormat):
			s.handleDomainError(w, err)
		case isStoreError(err):
			s.handleDomainError(w, err)
		default:
			// Constructor validation failures carry safe text.
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		}
		return
	}

	resp := ingestResponse{Receipt: notice.ViewOf(rec)}
	if issued != nil {
		v := passToView(*issued, false)
		resp.Pass = &v
	}
	writeJSON(w, http.StatusCreated, resp)
}

// BatchIngest handles POST /v1/receipts/batch. Item failures are reported
// per item; the response is 200 even when some items fail.
func (s *Server) BatchIngest(w http.ResponseWriter, r *http.Request) {
	var req batchIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Receipts) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "receipts must not be empty")
		return
	}
	if n := s.batches.MaxBatchSize(); len(req.Receipts) > n {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("batch size %d exceeds %d", len(req.Receipts), n))
		return
	}

	items := make([]receiptuc.Input, len(req.Receipts))
	for i, in := range req.Receipts {
		items[i] = receiptuc.Input{
			ID:       in.ID,
			UserID:   in.UserID,
			Vendor:   in.Vendor,
			Category: in.Category,
			Items:    in.Items,
			Total:    in.Total,
			Date:     in.Date,
		}
	}

	results := s.batches.Ingest(r.Context(), items)
	out := make([]batchItemResult, len(results))
	for i, res := range results {
		out[i] = batchItemResult{ID: res.ID, OK: res.OK()}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, batchIngestResponse{Results: out})
}

// GetReceipt handles GET /v1/receipts/{id}.
func (s *Server) GetReceipt(w http.ResponseWriter, r *http.Request) {
	rec, err := s.receipts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notice.ViewOf(rec))
}

// ListReceipts handles GET /v1/receipts.
func (s *Server) ListReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	recs, total, next, err := s.receipts.List(r.Context(), q.Get("user_id"), q.Get("cursor"), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptListResponse{
		Receipts:   notice.ViewsOf(recs, 0),
		Total:      total,
		NextCursor: next,
	})
}

// Query handles POST /v1/query: the synchronous variant of the pipeline,
// without progress notices.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	res, err := s.queries.Ask(r.Context(), req.UserID, req.Query, nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Success:  true,
		UserID:   req.UserID,
		Query:    req.Query,
		Answer:   res.Answer,
		Filter:   res.Filter,
		Count:    res.Count,
		Receipts: notice.ViewsOf(res.Receipts, s.queries.MaxResultReceipts()),
	})
}

// ListPasses handles GET /v1/users/{email}/passes.
func (s *Server) ListPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := s.passes.ListForUser(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	views := make([]passView, len(passes))
	for i, p := range passes {
		views[i] = passToView(p, false)
	}
	writeJSON(w, http.StatusOK, passListResponse{Passes: views})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrIdentityFormat,
		domain.ErrReceiptNotFound,
		domain.ErrPassNotFound,
		domain.ErrQueryExecution,
		domain.ErrLLMProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// isStoreError reports whether the error originates in the data store.
func isStoreError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
