// Package chi exposes the HTTP API: faceted search, category administration,
// and listing ingestion.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openlistings/searchd/internal/domain"
	"github.com/openlistings/searchd/internal/domain/search/query"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
	healthuc "github.com/openlistings/searchd/internal/usecase/health"
	searchuc "github.com/openlistings/searchd/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Config holds transport-level pagination bounds.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Server exposes the HTTP handlers over the usecase services.
type Server struct {
	search        *searchuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	cfg           Config
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		cfg:     cfg,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeCategoryNotFound),
		sentinelHandler(domain.ErrListingNotFound, http.StatusNotFound, codeListingNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError, codeRetrievalFailed),
	}
	return s
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.Search)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", s.CreateCategory)
			r.Get("/", s.ListCategories)
			r.Get("/{slug}", s.GetCategory)
			r.Delete("/{slug}", s.DeleteCategory)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Post("/batch", s.BatchPutListings)
			r.Put("/{id}", s.PutListing)
			r.Get("/{id}", s.GetListing)
			r.Delete("/{id}", s.DeleteListing)
		})
	})
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var pagePtr, limitPtr *int
	if err := runtime.BindQueryParameter("form", true, false, "page", values, &pagePtr); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid page parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", values, &limitPtr); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid limit parameter")
		return
	}

	page := 1
	if pagePtr != nil {
		page = *pagePtr
	}
	limit := s.cfg.DefaultPageSize
	if limitPtr != nil {
		limit = *limitPtr
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	var filtersJSON []byte
	if raw := values.Get("filters"); raw != "" {
		filtersJSON = []byte(raw)
	}

	req := query.New(values.Get("q"), values.Get("category"), filtersJSON, page, limit)

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToDTO(res))
}

// CreateCategory handles POST /api/v1/categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cat, err := s.catalog.CreateCategory(r.Context(), categoryInputFromDTO(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, categoryToDTO(cat))
}

// ListCategories handles GET /api/v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]categoryResponse, len(cats))
	for i, c := range cats {
		items[i] = categoryToDTO(c)
	}

	writeJSON(w, http.StatusOK, categoryListResponse{Items: items, Total: len(items)})
}

// GetCategory handles GET /api/v1/categories/{slug}.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryToDTO(cat))
}

// DeleteCategory handles DELETE /api/v1/categories/{slug}.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutListing handles PUT /api/v1/listings/{id}.
func (s *Server) PutListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	in := listingInputFromDTO(req)
	in.ID = chi.URLParam(r, "id")

	l, err := s.catalog.PutListing(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToDTO(&l))
}

// GetListing handles GET /api/v1/listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := s.catalog.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToDTO(&l))
}

// DeleteListing handles DELETE /api/v1/listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BatchPutListings handles POST /api/v1/listings/batch.
func (s *Server) BatchPutListings(w http.ResponseWriter, r *http.Request) {
	var req batchListingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "items must not be empty")
		return
	}

	ins := make([]cataloguc.ListingInput, len(req.Items))
	for i, item := range req.Items {
		ins[i] = listingInputFromDTO(item)
	}

	listings, err := s.catalog.BatchPutListings(r.Context(), ins)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]listingResponse, len(listings))
	for i := range listings {
		items[i] = listingToDTO(&listings[i])
	}

	writeJSON(w, http.StatusOK, batchListingsResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
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

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrListingNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidFilter,
		domain.ErrInvalidArgument,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
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
