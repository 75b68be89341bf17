package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with the dropship and commerce tables
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	// :memory: databases are per connection
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.DropshipModels()...))
	require.NoError(t, database.DB.AutoMigrate(models.CommerceModels()...))
	return database.DB
}

// newMockDB creates a GORM postgres connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newTestSupplier(t *testing.T, name, code string) *dropship.Supplier {
	t.Helper()
	s, err := dropship.NewSupplier(name, code)
	require.NoError(t, err)
	return s
}

func newTestProduct(t *testing.T, s *dropship.Supplier, sku string, price int64) *dropship.SupplierProduct {
	t.Helper()
	p, _ := dropship.NewSupplierProductFromFeed(s, dropship.CatalogRow{SKU: sku, Name: "Item " + sku, Price: price, Stock: 5}, time.Now())
	return p
}
