package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"catalog-quote-service/internal/domain"
)

//go:embed data/price_list.json
var bundledPriceList []byte

// Bundled returns the price list shipped inside the binary.
func Bundled() []byte {
	return bundledPriceList
}

// ReadFunc reads the raw catalog resource.
type ReadFunc func(ctx context.Context) ([]byte, error)

// BundledSource reads the embedded price list.
func BundledSource() ReadFunc {
	return func(context.Context) ([]byte, error) {
		return Bundled(), nil
	}
}

// FileSource reads the price list from path.
func FileSource(path string) ReadFunc {
	return func(context.Context) ([]byte, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("store: failed to read catalog from %s: %w", path, err)
		}
		return raw, nil
	}
}

// Loader reads and parses the catalog at most once per outcome. A successful
// load is kept for the life of the Loader; a failed one is kept until Reload.
type Loader struct {
	read ReadFunc

	mu    sync.Mutex
	done  bool
	store *MemoryStore
	err   error
}

// NewLoader creates a Loader over the given resource reader.
func NewLoader(read ReadFunc) *Loader {
	return &Loader{read: read}
}

// Store returns the loaded catalog, loading it on first use.
func (l *Loader) Store(ctx context.Context) (*MemoryStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.load(ctx)
	}
	return l.store, l.err
}

// Reload retries a failed load. After a successful load it does nothing.
func (l *Loader) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done && l.err == nil {
		return nil
	}
	l.load(ctx)
	return l.err
}

// LoadProduct resolves code against the loaded catalog.
func (l *Loader) LoadProduct(ctx context.Context, code string) (domain.Product, error) {
	s, err := l.Store(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return s.ProductByCode(code)
}

func (l *Loader) load(ctx context.Context) {
	l.done = true
	raw, err := l.read(ctx)
	if err != nil {
		l.store, l.err = nil, err
		return
	}
	l.store, l.err = Open(raw)
}
