package dropship

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/cache"
	"github.com/erp/dropship/internal/infrastructure/persistence"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires the GORM repositories over an in-memory SQLite database
type testEnv struct {
	db        *gorm.DB
	suppliers *persistence.GormSupplierRepository
	products  *persistence.GormSupplierProductRepository
	orders    *persistence.GormSupplierOrderRepository
	locker    *cache.InMemorySupplierLocker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := persistence.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	// :memory: databases are per connection
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.DropshipModels()...))
	require.NoError(t, database.DB.AutoMigrate(models.CommerceModels()...))

	return &testEnv{
		db:        database.DB,
		suppliers: persistence.NewGormSupplierRepository(database.DB),
		products:  persistence.NewGormSupplierProductRepository(database.DB),
		orders:    persistence.NewGormSupplierOrderRepository(database.DB),
		locker:    cache.NewInMemorySupplierLocker(),
	}
}

// createSupplier saves a syncable supplier with the given code
func (e *testEnv) createSupplier(t *testing.T, code string, mutate ...func(*dropship.Supplier)) *dropship.Supplier {
	t.Helper()
	s, err := dropship.NewSupplier("Supplier "+code, code)
	require.NoError(t, err)
	for _, fn := range mutate {
		fn(s)
	}
	require.NoError(t, e.suppliers.Save(context.Background(), s))
	return s
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *dropship.Supplier {
	t.Helper()
	s, err := e.suppliers.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (e *testEnv) product(t *testing.T, supplierID uuid.UUID, sku string) *dropship.SupplierProduct {
	t.Helper()
	p, err := e.products.FindBySupplierAndSKU(context.Background(), supplierID, sku)
	require.NoError(t, err)
	return p
}

// stubFetcher serves in-memory feeds keyed by supplier code
type stubFetcher struct {
	mu    sync.Mutex
	feeds map[string][]dropship.CatalogRow
	errs  map[string]error
	calls int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{feeds: map[string][]dropship.CatalogRow{}, errs: map[string]error{}}
}

func (f *stubFetcher) set(code string, rows ...dropship.CatalogRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeds[code] = rows
	delete(f.errs, code)
}

func (f *stubFetcher) fail(code string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[code] = err
}

func (f *stubFetcher) Resolve(s *dropship.Supplier) (dropship.FeedEndpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, hasFeed := f.feeds[s.Code]
	_, hasErr := f.errs[s.Code]
	if !hasFeed && !hasErr {
		return dropship.FeedEndpoint{}, dropship.ErrNoEndpoint
	}
	return dropship.FeedEndpoint{URL: "stub://" + s.Code, Source: dropship.EndpointRouting}, nil
}

func (f *stubFetcher) Fetch(_ context.Context, endpoint dropship.FeedEndpoint) (*dropship.CatalogFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	code := strings.TrimPrefix(endpoint.URL, "stub://")
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	rows := append([]dropship.CatalogRow(nil), f.feeds[code]...)
	return &dropship.CatalogFeed{Endpoint: endpoint.URL, Rows: rows, Raw: []byte(`{"products":[]}`), FetchedAt: time.Now()}, nil
}

// failingProducts fails Save for the listed SKUs
type failingProducts struct {
	dropship.SupplierProductRepository
	failSKUs map[string]bool
}

func (r *failingProducts) Save(ctx context.Context, p *dropship.SupplierProduct) error {
	if r.failSKUs[p.SupplierSKU] {
		return errors.New("disk full")
	}
	return r.SupplierProductRepository.Save(ctx, p)
}

// recordingNotifier counts storefront notifications
type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
	err   error
}

func (n *recordingNotifier) CatalogChanged(_ context.Context, supplierID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, supplierID)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// recordingArchive keeps archived feeds in memory
type recordingArchive struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (a *recordingArchive) Store(_ context.Context, code string, _ *dropship.CatalogFeed) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.codes = append(a.codes, code)
	if a.err != nil {
		return "", a.err
	}
	return "feeds/" + code + ".json", nil
}

func row(sku string, price, stock int64) dropship.CatalogRow {
	return dropship.CatalogRow{SKU: sku, Name: "Item " + sku, Price: price, Stock: stock}
}
