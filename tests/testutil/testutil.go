// Package testutil provides common test utilities for the duka backend:
// mocked and in-memory databases, seed fixtures and HTTP helpers.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM connection backed by sqlmock.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens a private in-memory sqlite database with the full schema.
// A single connection is used, so concurrent transactions run one after another.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), persistence.GormConfig(persistence.Options{}))
	require.NoError(t, err, "Failed to open sqlite")
	persistence.RegisterShopGuard(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// SeedShop inserts a shop of the given type
func SeedShop(t *testing.T, db *gorm.DB, shopType shop.ShopType) *shop.Shop {
	t.Helper()
	s, err := shop.NewShop(shopType.DisplayName(), shopType)
	require.NoError(t, err)
	require.NoError(t, db.Create(s).Error)
	return s
}

// SeedStockItem inserts a retail item with the given price, cost and quantity
func SeedStockItem(t *testing.T, db *gorm.DB, shopID uuid.UUID, sku string, price, cost string, qty int) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(shopID, inventory.ItemKindRetail, sku, "Item "+sku,
		decimal.RequireFromString(cost), decimal.RequireFromString(price), qty)
	require.NoError(t, err)
	require.NoError(t, db.Create(item).Error)
	return item
}

// SeedCustomer inserts a customer
func SeedCustomer(t *testing.T, db *gorm.DB, shopID uuid.UUID, name, phone string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(shopID, name, phone)
	require.NoError(t, err)
	require.NoError(t, db.Create(c).Error)
	return c
}

// ReloadStockItem reads the current state of an item
func ReloadStockItem(t *testing.T, db *gorm.DB, id uuid.UUID) *inventory.StockItem {
	t.Helper()
	var item inventory.StockItem
	require.NoError(t, db.First(&item, "id = ?", id).Error)
	return &item
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
