package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-quote-service/internal/domain"
	"catalog-quote-service/internal/store"
)

const testCatalog = `{
  "metadata": {"brand": "Yazbek", "date": "Octubre 2025", "currency": "MXN"},
  "catalog": [
    {"category": "Playeras", "products": [
      {"code": "YZ-100", "description": "Playera cuello redondo manga corta caballero",
       "prices": [
         {"color": "Blanco", "size": "M", "wholesalePrice": 50, "retailPrice": 65},
         {"color": "Negro", "size": "G", "wholesalePrice": 55, "retailPrice": 70}
       ]},
      {"code": "YZ-200", "description": "Playera cuello V manga larga dama",
       "prices": [{"color": "Rojo", "size": "CH", "wholesalePrice": 80, "retailPrice": 99}]}
    ]},
    {"category": "Sudaderas", "products": [
      {"code": "YZ-300", "description": "Sudadera con capucha jaspe",
       "prices": [{"color": "Gris", "size": "G", "wholesalePrice": 150, "retailPrice": 190}]}
    ]}
  ]
}`

// MockCatalogLoader is a mock implementation of store.CatalogLoader
type MockCatalogLoader struct {
	mock.Mock
}

func (m *MockCatalogLoader) LoadProduct(ctx context.Context, code string) (domain.Product, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogLoader) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s, err := store.Open([]byte(testCatalog))
	require.NoError(t, err)
	return s
}

// setupTestChiServer serves the handler over a real router. A nil loader
// resolves products from the fixture catalog.
func setupTestChiServer(t *testing.T, loader store.CatalogLoader) *httptest.Server {
	t.Helper()
	s := testStore(t)
	if loader == nil {
		loader = s
	}
	handler := NewHTTPHandler(s, loader, 2, nil)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	reqBody, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewBuffer(reqBody))
	require.NoError(t, err)
	return res
}

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}
