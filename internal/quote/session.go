package quote

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/store"
)

// ErrCatalogUnavailable wraps a failure to load the catalog for a quote.
var ErrCatalogUnavailable = errors.New("quote: catalog unavailable")

// State is the lifecycle stage of a quote session.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// ProductLoader resolves the product being quoted.
type ProductLoader interface {
	LoadProduct(ctx context.Context, code string) (domain.Product, error)
}

// Session quotes one product. It starts Loading, moves to Ready or Failed on
// Open, and leaves Failed only through Retry.
type Session struct {
	code   string
	loader ProductLoader

	state State
	err   error

	product   domain.Product
	config    Config
	colors    []string
	sizes     []string
	breakdown *PriceBreakdown
}

// View is the read-only state rendered for a quote session.
type View struct {
	State     State           `json:"state"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code"`
	Product   *domain.Product `json:"product,omitempty"`
	Colors    []string        `json:"colors"`
	Sizes     []string        `json:"sizes"`
	Config    Config          `json:"config"`
	Breakdown *PriceBreakdown `json:"breakdown"`
}

// NewSession creates a Loading session for code.
func NewSession(code string, loader ProductLoader) *Session {
	return &Session{
		code:   code,
		loader: loader,
		state:  StateLoading,
		config: DefaultConfig(),
	}
}

// Open loads the product. It only acts on a Loading session and returns the
// failure that moved the session to Failed, if any.
func (s *Session) Open(ctx context.Context) error {
	if s.state != StateLoading {
		return nil
	}
	product, err := s.loader.LoadProduct(ctx, s.code)
	if err != nil {
		if !errors.Is(err, store.ErrProductNotFound) {
			err = fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		s.state, s.err = StateFailed, err
		return err
	}

	s.product = product
	s.colors = product.Colors()
	s.sizes = product.Sizes()
	s.config = DefaultConfig()
	s.breakdown = nil
	s.state, s.err = StateReady, nil
	return nil
}

// Retry reopens a Failed session.
func (s *Session) Retry(ctx context.Context) error {
	if s.state != StateFailed {
		return nil
	}
	s.state, s.err = StateLoading, nil
	return s.Open(ctx)
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Err returns the failure reason of a Failed session.
func (s *Session) Err() error {
	return s.err
}

// Action is a user event applied to a Ready session.
type Action interface {
	applyTo(s *Session) *domain.Event
}

type (
	SelectChannel      struct{ Channel domain.Channel }
	SelectColor        struct{ Color string }
	SelectSize         struct{ Size string }
	AddPrint           struct{}
	RemovePrint        struct{ Position int }
	UpdateQuantity     struct{ Delta int }
	UpdateProfitMargin struct{ Margin decimal.Decimal }
	NavigateBack       struct{}
)

// UpdatePrintPrice replaces the price of the print at Position.
type UpdatePrintPrice struct {
	Position int
	Price    decimal.Decimal
}

// Apply runs an action and recomputes the breakdown. Only NavigateBack is
// honoured outside the Ready state.
func (s *Session) Apply(a Action) *domain.Event {
	if _, back := a.(NavigateBack); !back && s.state != StateReady {
		return nil
	}
	ev := a.applyTo(s)
	if s.state == StateReady {
		s.recalculate()
	}
	return ev
}

func (a SelectChannel) applyTo(s *Session) *domain.Event {
	if a.Channel.Valid() {
		s.config.Channel = a.Channel
	}
	return nil
}

func (a SelectColor) applyTo(s *Session) *domain.Event {
	s.config.Color = a.Color
	s.sizes = s.product.SizesFor(a.Color)
	if !slices.Contains(s.sizes, s.config.Size) {
		s.config.Size = ""
	}
	return nil
}

func (a SelectSize) applyTo(s *Session) *domain.Event {
	s.config.Size = a.Size
	return nil
}

func (AddPrint) applyTo(s *Session) *domain.Event {
	s.config.Prints, _ = s.config.Prints.Add()
	return nil
}

func (a RemovePrint) applyTo(s *Session) *domain.Event {
	s.config.Prints = s.config.Prints.Remove(a.Position)
	return nil
}

func (a UpdatePrintPrice) applyTo(s *Session) *domain.Event {
	s.config.Prints = s.config.Prints.UpdatePrice(a.Position, a.Price)
	return nil
}

func (a UpdateQuantity) applyTo(s *Session) *domain.Event {
	s.config.Quantity = ClampQuantity(s.config.Quantity + a.Delta)
	return nil
}

func (a UpdateProfitMargin) applyTo(s *Session) *domain.Event {
	s.config.Margin = ClampMargin(a.Margin)
	return nil
}

func (NavigateBack) applyTo(*Session) *domain.Event {
	return &domain.Event{Type: domain.EventNavigateBack}
}

func (s *Session) recalculate() {
	b, ok := Calculate(s.product, s.config)
	if !ok {
		s.breakdown = nil
		return
	}
	s.breakdown = &b
}

// View returns the current state.
func (s *Session) View() View {
	v := View{
		State:     s.state,
		Code:      s.code,
		Colors:    nonNil(s.colors),
		Sizes:     nonNil(s.sizes),
		Config:    s.config,
		Breakdown: s.breakdown,
	}
	if s.err != nil {
		v.Error = s.err.Error()
	}
	if s.state == StateReady {
		p := s.product
		v.Product = &p
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
