package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/observability"
	"catalog-quote-service/internal/query"
	"catalog-quote-service/internal/quote"
	"catalog-quote-service/internal/session"
)

// AmountText is a free-text amount that may arrive as a JSON string or number.
type AmountText string

func (a *AmountText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = AmountText(s)
		return nil
	}
	*a = AmountText(strings.TrimSpace(string(b)))
	return nil
}

// SessionResponse carries a session's state and any navigation event raised.
type SessionResponse struct {
	ID    string        `json:"id"`
	View  interface{}   `json:"view,omitempty"`
	Event *domain.Event `json:"event,omitempty"`
}

func (h *HTTPHandler) sessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		h.respondWithError(w, http.StatusNotFound, session.ErrSessionNotFound.Error())
		return
	}
	h.logger.Error("session operation failed", zap.String("session_id", id), zap.Error(err))
	h.respondWithError(w, http.StatusInternalServerError, "Failed to process session")
}

// --- Browse Sessions ---

func (h *HTTPHandler) CreateBrowseSession(w http.ResponseWriter, r *http.Request) {
	b := query.NewBrowser(h.catalog.store.AllProducts(), h.catalog.store, h.pageSize)
	id := h.browsers.Create(b)
	h.logger.Debug("browse session created",
		zap.String("session_id", id.String()),
		zap.Int("live_sessions", h.browsers.Len()),
	)
	h.respondWithJSON(w, http.StatusCreated, SessionResponse{ID: id.String(), View: b.View()})
}

func (h *HTTPHandler) GetBrowseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	var view query.View
	err := h.browsers.With(id, func(b *query.Browser) error {
		view = b.View()
		return nil
	})
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, SessionResponse{ID: id, View: view})
}

// BrowseActionInput defines the expected input for a browse session action.
type BrowseActionInput struct {
	Type     string     `json:"type" validate:"required,oneof=update_search_query select_category set_price_range select_attribute clear_filters load_more select_product"`
	Query    string     `json:"query" validate:"max=500"`
	Category string     `json:"category"`
	MinPrice AmountText `json:"min_price"`
	MaxPrice AmountText `json:"max_price"`
	Key      string     `json:"key" validate:"omitempty,oneof=collar sleeve gender feature"`
	Value    string     `json:"value"`
	Code     string     `json:"code" validate:"required_if=Type select_product"`
}

func (in BrowseActionInput) toAction() (query.Action, error) {
	switch in.Type {
	case "update_search_query":
		return query.UpdateSearchQuery{Query: in.Query}, nil
	case "select_category":
		return query.SelectCategory{Category: in.Category}, nil
	case "set_price_range":
		return query.SetPriceRange{Min: optionalAmount(string(in.MinPrice)), Max: optionalAmount(string(in.MaxPrice))}, nil
	case "select_attribute":
		if !attribute.Key(in.Key).Valid() {
			return nil, errors.New("select_attribute requires key")
		}
		return query.SelectAttribute{Key: attribute.Key(in.Key), Value: in.Value}, nil
	case "clear_filters":
		return query.ClearFilters{}, nil
	case "load_more":
		return query.LoadMore{}, nil
	case "select_product":
		return query.SelectProduct{Code: in.Code}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", in.Type)
	}
}

func (h *HTTPHandler) ApplyBrowseAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	var input BrowseActionInput
	if !h.decode(w, r, &input) {
		return
	}
	action, err := input.toAction()
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	_, span := h.tracer.StartSession(r.Context(), "browse.action", id)
	defer span.End()

	resp := SessionResponse{ID: id}
	err = h.browsers.With(id, func(b *query.Browser) error {
		resp.Event = b.Apply(action)
		view := b.View()
		observability.RecordCount(span, view.TotalHits)
		resp.View = view
		return nil
	})
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) DeleteBrowseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if !h.browsers.Delete(id) {
		h.respondWithError(w, http.StatusNotFound, session.ErrSessionNotFound.Error())
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Quote Sessions ---

// QuoteSessionCreateInput defines the expected input for opening a quote.
type QuoteSessionCreateInput struct {
	Code string `json:"code" validate:"required,max=100"`
}

// CreateQuoteSession opens a quote for a product. A product that cannot be
// loaded still yields a session, in the failed state.
func (h *HTTPHandler) CreateQuoteSession(w http.ResponseWriter, r *http.Request) {
	var input QuoteSessionCreateInput
	if !h.decode(w, r, &input) {
		return
	}

	s := quote.NewSession(input.Code, h.loader)
	if err := s.Open(r.Context()); err != nil {
		h.logger.Warn("quote session failed to open", zap.String("code", input.Code), zap.Error(err))
	}
	id := h.quotes.Create(s)
	h.logger.Debug("quote session created",
		zap.String("session_id", id.String()),
		zap.String("state", string(s.State())),
		zap.Int("live_sessions", h.quotes.Len()),
	)
	h.respondWithJSON(w, http.StatusCreated, SessionResponse{ID: id.String(), View: s.View()})
}

func (h *HTTPHandler) GetQuoteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	var view quote.View
	err := h.quotes.With(id, func(s *quote.Session) error {
		view = s.View()
		return nil
	})
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, SessionResponse{ID: id, View: view})
}

// QuoteActionInput defines the expected input for a quote session action.
type QuoteActionInput struct {
	Type     string     `json:"type" validate:"required,oneof=select_channel select_color select_size add_print remove_print update_print_price update_quantity update_profit_margin navigate_back"`
	Channel  string     `json:"channel" validate:"omitempty,oneof=wholesale retail"`
	Color    string     `json:"color" validate:"required_if=Type select_color"`
	Size     string     `json:"size" validate:"required_if=Type select_size"`
	Position int        `json:"position" validate:"gte=0,lte=4"`
	Price    AmountText `json:"price"`
	Delta    int        `json:"delta"`
	Margin   AmountText `json:"margin"`
}

func (in QuoteActionInput) toAction() (quote.Action, error) {
	switch in.Type {
	case "select_channel":
		if !domain.Channel(in.Channel).Valid() {
			return nil, errors.New("select_channel requires channel")
		}
		return quote.SelectChannel{Channel: domain.Channel(in.Channel)}, nil
	case "select_color":
		return quote.SelectColor{Color: in.Color}, nil
	case "select_size":
		return quote.SelectSize{Size: in.Size}, nil
	case "add_print":
		return quote.AddPrint{}, nil
	case "remove_print":
		return quote.RemovePrint{Position: in.Position}, nil
	case "update_print_price":
		return quote.UpdatePrintPrice{Position: in.Position, Price: quote.ParseAmount(string(in.Price))}, nil
	case "update_quantity":
		return quote.UpdateQuantity{Delta: in.Delta}, nil
	case "update_profit_margin":
		return quote.UpdateProfitMargin{Margin: quote.ParseAmount(string(in.Margin))}, nil
	case "navigate_back":
		return quote.NavigateBack{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", in.Type)
	}
}

// ApplyQuoteAction applies one action and returns the recomputed quote.
// navigate_back discards the session.
func (h *HTTPHandler) ApplyQuoteAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	var input QuoteActionInput
	if !h.decode(w, r, &input) {
		return
	}
	action, err := input.toAction()
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	ctx, span := h.tracer.StartSession(r.Context(), "quote.action", id)
	defer span.End()

	resp := SessionResponse{ID: id}
	err = h.quotes.With(id, func(s *quote.Session) error {
		_, qspan := h.tracer.StartQuote(ctx, s.View().Code)
		defer qspan.End()
		resp.Event = s.Apply(action)
		view := s.View()
		observability.RecordQuote(qspan, view.Breakdown != nil)
		resp.View = view
		return nil
	})
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	if resp.Event != nil && resp.Event.Type == domain.EventNavigateBack {
		h.quotes.Delete(id)
		resp.View = nil
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

// RetryQuoteSession reloads the catalog if needed and reopens a failed quote.
func (h *HTTPHandler) RetryQuoteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	var view quote.View
	err := h.quotes.With(id, func(s *quote.Session) error {
		if s.State() == quote.StateFailed {
			if err := h.loader.Reload(r.Context()); err != nil {
				h.logger.Warn("catalog reload failed", zap.String("session_id", id), zap.Error(err))
			}
			if err := s.Retry(r.Context()); err != nil {
				h.logger.Warn("quote session retry failed", zap.String("session_id", id), zap.Error(err))
			}
		}
		view = s.View()
		return nil
	})
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, SessionResponse{ID: id, View: view})
}

func (h *HTTPHandler) DeleteQuoteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if !h.quotes.Delete(id) {
		h.respondWithError(w, http.StatusNotFound, session.ErrSessionNotFound.Error())
		return
	}
	h.respondWithJSON(w, http.StatusNoContent, nil)
}
