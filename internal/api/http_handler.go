package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/observability"
	"catalog-quote-service/internal/query"
	"catalog-quote-service/internal/quote"
	"catalog-quote-service/internal/session"
	"catalog-quote-service/internal/store"
)

const maxPageSize = 100

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog  *catalogView
	loader   store.CatalogLoader
	browsers *session.Registry[*query.Browser]
	quotes   *session.Registry[*quote.Session]
	pageSize int
	validate *validator.Validate
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(cs store.CatalogReader, cl store.CatalogLoader, pageSize int, logger *zap.Logger) *HTTPHandler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		catalog:  newCatalogView(cs),
		loader:   cl,
		browsers: session.NewRegistry[*query.Browser](),
		quotes:   session.NewRegistry[*quote.Session](),
		pageSize: pageSize,
		validate: validator.New(),
		tracer:   observability.NewTracer(nil),
		logger:   logger,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, input interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// --- Catalog Handlers ---

// CatalogResponse describes the loaded price list.
type CatalogResponse struct {
	Metadata   domain.Metadata `json:"metadata"`
	Version    string          `json:"version"`
	Categories []string        `json:"categories"`
	Products   int             `json:"products"`
}

func (h *HTTPHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s := h.catalog.store
	tag := etag(s.Version())
	w.Header().Set("ETag", tag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.respondWithJSON(w, http.StatusOK, CatalogResponse{
		Metadata:   s.PriceList().Metadata,
		Version:    s.Version(),
		Categories: s.Categories(),
		Products:   len(s.AllProducts()),
	})
}

func (h *HTTPHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.StartFacets(r.Context())
	defer span.End()
	h.respondWithJSON(w, http.StatusOK, h.catalog.Facets())
}

// PaginationInfo describes the page returned by ListProducts. Page is 0-based.
type PaginationInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// ProductListResponse is one page of filtered products.
type ProductListResponse struct {
	Data       []domain.Product `json:"data"`
	Pagination PaginationInfo   `json:"pagination"`
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	limit, err := strconv.Atoi(qParams.Get("limit"))
	if err != nil || limit <= 0 {
		limit = h.pageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page, err := strconv.Atoi(qParams.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	filters := query.FilterState{
		Query:    qParams.Get("q"),
		Category: qParams.Get("category"),
	}
	for _, bound := range []struct {
		param string
		dst   **decimal.Decimal
	}{{"min_price", &filters.MinPrice}, {"max_price", &filters.MaxPrice}} {
		raw := qParams.Get(bound.param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			h.respondWithError(w, http.StatusBadRequest, "Invalid "+bound.param+" format")
			return
		}
		*bound.dst = &d
	}
	for _, k := range attribute.Keys {
		if v := qParams.Get(string(k)); v != "" {
			if filters.Attributes == nil {
				filters.Attributes = make(map[attribute.Key]string)
			}
			filters.Attributes[k] = v
		}
	}

	_, span := h.tracer.StartFilter(r.Context(), page)
	result := h.catalog.List(ListParams{Filters: filters, Page: page, PageSize: limit})
	observability.RecordCount(span, result.TotalItems)
	span.End()

	h.respondWithJSON(w, http.StatusOK, ProductListResponse{
		Data: result.Products,
		Pagination: PaginationInfo{
			Page:       page,
			Limit:      limit,
			TotalItems: result.TotalItems,
			TotalPages: totalPages(result.TotalItems, limit),
			HasMore:    result.HasMore,
		},
	})
}

func (h *HTTPHandler) GetProductByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	product, err := h.catalog.store.ProductByCode(code)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			h.respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			h.logger.Error("product lookup failed", zap.String("code", code), zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}
	h.respondWithJSON(w, http.StatusOK, h.catalog.detail(product))
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/catalog", h.GetCatalog)
	r.Get("/api/v1/facets", h.GetFacets)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{code}", h.GetProductByCode)
	})

	r.Route("/api/v1/browse-sessions", func(r chi.Router) {
		r.Post("/", h.CreateBrowseSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetBrowseSession)
			r.Post("/actions", h.ApplyBrowseAction)
			r.Delete("/", h.DeleteBrowseSession)
		})
	})

	r.Route("/api/v1/quote-sessions", func(r chi.Router) {
		r.Post("/", h.CreateQuoteSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetQuoteSession)
			r.Post("/actions", h.ApplyQuoteAction)
			r.Post("/retry", h.RetryQuoteSession)
			r.Delete("/", h.DeleteQuoteSession)
		})
	})
}
