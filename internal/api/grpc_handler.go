package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"catalog-quote-service/internal/attribute"
	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/observability"
	"catalog-quote-service/internal/query"
	"catalog-quote-service/internal/quote"
	"catalog-quote-service/internal/store"
)

// CatalogQuoteServiceName is the fully qualified gRPC service name.
const CatalogQuoteServiceName = "catalogquote.v1.CatalogQuoteService"

// CatalogQuoteServer is the gRPC surface of the service. Requests and
// responses are generic structs so no generated code is needed.
type CatalogQuoteServer interface {
	ListProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFacets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QuoteProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// GRPCHandler implements CatalogQuoteServer.
type GRPCHandler struct {
	catalog  *catalogView
	loader   store.CatalogLoader
	pageSize int
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(cs store.CatalogReader, cl store.CatalogLoader, pageSize int, logger *zap.Logger) *GRPCHandler {
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{
		catalog:  newCatalogView(cs),
		loader:   cl,
		pageSize: pageSize,
		tracer:   observability.NewTracer(nil),
		logger:   logger,
	}
}

// Register adds the service to s.
func (g *GRPCHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&catalogQuoteServiceDesc, g)
}

// --- Helper: Error Mapping ---
func (g *GRPCHandler) mapError(err error, code string) error {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		return status.Errorf(codes.NotFound, "product %q not found", code)
	case errors.Is(err, quote.ErrCatalogUnavailable):
		g.logger.Error("catalog unavailable", zap.String("code", code), zap.Error(err))
		return status.Error(codes.Unavailable, "catalog unavailable")
	default:
		g.logger.Error("grpc request failed", zap.String("code", code), zap.Error(err))
		return status.Errorf(codes.Internal, "failed to process request for %q", code)
	}
}

// --- Catalog Methods ---

func (g *GRPCHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	limit, err := intField(fields["limit"], "limit")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = g.pageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page, err := intField(fields["page"], "page")
	if err != nil {
		return nil, err
	}
	if page < 0 {
		return nil, status.Error(codes.InvalidArgument, "page must not be negative")
	}

	filters := query.FilterState{
		Query:    fields["query"].GetStringValue(),
		Category: fields["category"].GetStringValue(),
	}
	if filters.MinPrice, err = priceBound(fields["min_price"]); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid min_price: %v", err)
	}
	if filters.MaxPrice, err = priceBound(fields["max_price"]); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid max_price: %v", err)
	}
	for _, k := range attribute.Keys {
		if v := fields[string(k)].GetStringValue(); v != "" {
			if filters.Attributes == nil {
				filters.Attributes = make(map[attribute.Key]string)
			}
			filters.Attributes[k] = v
		}
	}

	_, span := g.tracer.StartFilter(ctx, page)
	defer span.End()
	result := g.catalog.List(ListParams{Filters: filters, Page: page, PageSize: limit})
	observability.RecordCount(span, result.TotalItems)

	return toStruct(ProductListResponse{
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

func (g *GRPCHandler) GetFacets(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	_, span := g.tracer.StartFacets(ctx)
	defer span.End()
	return toStruct(g.catalog.Facets())
}

// --- Quote Methods ---

// QuoteProduct prices a complete configuration in one call. An incomplete
// configuration is answered with complete=false rather than an error.
func (g *GRPCHandler) QuoteProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	code := fields["code"].GetStringValue()
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}

	cfg := quote.DefaultConfig()
	if ch, ok := fields["channel"]; ok {
		cfg.Channel = domain.Channel(ch.GetStringValue())
		if !cfg.Channel.Valid() {
			return nil, status.Errorf(codes.InvalidArgument, "unknown channel %q", ch.GetStringValue())
		}
	}
	cfg.Color = fields["color"].GetStringValue()
	cfg.Size = fields["size"].GetStringValue()
	if q, ok := fields["quantity"]; ok {
		n, err := intField(q, "quantity")
		if err != nil {
			return nil, err
		}
		cfg.Quantity = quote.ClampQuantity(n)
	}
	if m, ok := fields["margin"]; ok {
		cfg.Margin = quote.ClampMargin(amountValue(m))
	}
	for _, v := range fields["prints"].GetListValue().GetValues() {
		prints, ok := cfg.Prints.Add()
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "at most %d prints are allowed", quote.MaxPrints)
		}
		cfg.Prints = prints.UpdatePrice(len(prints), amountValue(v))
	}

	ctx, span := g.tracer.StartQuote(ctx, code)
	defer span.End()

	product, err := g.loader.LoadProduct(ctx, code)
	if err != nil {
		if !errors.Is(err, store.ErrProductNotFound) {
			err = errors.Join(quote.ErrCatalogUnavailable, err)
		}
		return nil, g.mapError(err, code)
	}

	resp := quoteResponse{Code: code, Config: cfg}
	if b, ok := quote.Calculate(product, cfg); ok {
		resp.Complete = true
		resp.Breakdown = &b
	}
	observability.RecordQuote(span, resp.Complete)
	return toStruct(resp)
}

type quoteResponse struct {
	Code      string                `json:"code"`
	Complete  bool                  `json:"complete"`
	Config    quote.Config          `json:"config"`
	Breakdown *quote.PriceBreakdown `json:"breakdown"`
}

// --- Helper Functions for Conversion ---

// toStruct converts a JSON-tagged value into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

// maxIntField bounds whole-number request fields.
const maxIntField = math.MaxInt32

// intField reads an optional whole number. Missing or null is zero.
func intField(v *structpb.Value, name string) (int, error) {
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > maxIntField {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number between -%d and %d", name, maxIntField, maxIntField)
		}
		return int(n), nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
}

// amountValue reads a number, or free text such as "$12.50" or "20%".
func amountValue(v *structpb.Value) decimal.Decimal {
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return quote.ParseAmount(s.StringValue)
	}
	return decimal.NewFromFloat(v.GetNumberValue())
}

// priceBound reads an optional non-negative price filter.
func priceBound(v *structpb.Value) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch k := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_NumberValue:
		d = decimal.NewFromFloat(k.NumberValue)
	case *structpb.Value_StringValue:
		if k.StringValue == "" {
			return nil, nil
		}
		var err error
		if d, err = decimal.NewFromString(k.StringValue); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("must be a number or string")
	}
	if d.IsNegative() {
		return nil, errors.New("must not be negative")
	}
	return &d, nil
}

// --- Service Descriptor ---

func unaryHandler(
	method string,
	call func(CatalogQuoteServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogQuoteServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + CatalogQuoteServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CatalogQuoteServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var catalogQuoteServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogQuoteServiceName,
	HandlerType: (*CatalogQuoteServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListProducts", CatalogQuoteServer.ListProducts),
		unaryHandler("GetFacets", CatalogQuoteServer.GetFacets),
		unaryHandler("QuoteProduct", CatalogQuoteServer.QuoteProduct),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalogquote/v1/catalog_quote.proto",
}
