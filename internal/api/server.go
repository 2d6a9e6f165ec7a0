// Package api provides the REST API exposing the host's object tree.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/host"
	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
	"github.com/fidde/fprime_openmct/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ObjectHost is the lookup side of the host registry.
type ObjectHost interface {
	Roots() []models.Identifier
	Get(ctx context.Context, id models.Identifier) (*models.ObjectDescriptor, error)
	Composition(ctx context.Context, obj *models.ObjectDescriptor) ([]models.Identifier, error)
	Type(name string) (models.TypeDescriptor, bool)
	Types() map[string]models.TypeDescriptor
	TypeNames() []string
}

// Server is the REST API server.
type Server struct {
	host    ObjectHost
	router  *chi.Mux
	server  *http.Server
	docs    *web.DictionaryFileSystem
	metrics *observability.Metrics
}

// PaginationParams contains pagination parameters from query string.
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginatedResponse wraps a paginated response with metadata.
type PaginatedResponse struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

// parsePaginationParams extracts pagination parameters from request.
// Defaults: limit=1000, offset=0, max_limit=10000
func parsePaginationParams(r *http.Request) PaginationParams {
	const (
		defaultLimit = 1000
		maxLimit     = 10000
	)

	limit := defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// paginateSlice applies pagination to a slice.
func paginateSlice[T any](items []T, params PaginationParams) PaginatedResponse {
	total := len(items)
	start := params.Offset
	end := start + params.Limit

	if start >= total {
		return PaginatedResponse{
			Data:    []T{},
			Total:   total,
			Limit:   params.Limit,
			Offset:  params.Offset,
			HasMore: false,
		}
	}

	if end > total {
		end = total
	}

	return PaginatedResponse{
		Data:    items[start:end],
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: end < total,
	}
}

// NewServer creates a new API server. docs serves the dictionary document
// and metrics the /metrics endpoint; either may be nil to disable it.
func NewServer(addr string, h ObjectHost, docs *web.DictionaryFileSystem, metrics *observability.Metrics) *Server {
	s := &Server{
		host:    h,
		router:  chi.NewRouter(),
		docs:    docs,
		metrics: metrics,
	}

	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)

		r.Get("/roots", s.listRoots)

		// More specific route first
		r.Get("/objects/{id}/composition", s.getComposition)
		r.Get("/objects/{id}", s.getObject)

		r.Get("/types", s.listTypes)
		r.Get("/types/{name}", s.getType)
	})

	if docs != nil {
		s.router.Get(dictionary.DefaultPath, s.serveDictionary)
	}
	if metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// listRoots returns the root identifiers.
func (s *Server) listRoots(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.host.Roots())
}

// getObject resolves one identifier.
// GET /api/v1/objects/{namespace:key}
func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	obj, err := s.host.Get(r.Context(), id)
	if err != nil {
		s.respondResolveError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, obj)
}

// getComposition returns the children of an object.
// Supports pagination via ?limit=N&offset=M query parameters.
func (s *Server) getComposition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	obj, err := s.host.Get(ctx, id)
	if err != nil {
		s.respondResolveError(w, err)
		return
	}

	children, err := s.host.Composition(ctx, obj)
	if err != nil {
		s.respondResolveError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, paginateSlice(children, params))
}

// listTypes returns all registered type descriptors keyed by name.
func (s *Server) listTypes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.host.Types())
}

// getType returns one type descriptor.
func (s *Server) getType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, ok := s.host.Type(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "type not found")
		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

// serveDictionary serves the dictionary document itself.
func (s *Server) serveDictionary(w http.ResponseWriter, r *http.Request) {
	f, err := s.docs.Open(r.URL.Path)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "dictionary not available")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	http.ServeContent(w, r, web.SampleDictionary, stat.ModTime(), f)
}

// parseID reads and decodes the {id} URL parameter.
func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (models.Identifier, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid identifier encoding")
		return models.Identifier{}, false
	}

	id, err := models.ParseIdentifier(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return models.Identifier{}, false
	}
	return id, true
}

// respondResolveError maps resolution errors to HTTP statuses.
func (s *Server) respondResolveError(w http.ResponseWriter, err error) {
	var (
		fetchErr *models.FetchError
		parseErr *models.ParseError
	)

	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, host.ErrNoProvider):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrNotComposable), errors.Is(err, models.ErrNamespaceMismatch):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
