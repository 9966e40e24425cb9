package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormStockItemRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := persistence.NewGormStockItemRepository(m.DB)
		shopID, itemID := uuid.New(), uuid.New()

		rows := sqlmock.NewRows([]string{"id", "shop_id", "sku", "name", "on_hand_quantity"}).
			AddRow(itemID, shopID, "SODA-1", "Soda", 12)
		m.Mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE \(?shop_id = \$1 AND id = \$2\)? ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(shopID, itemID, 1).
			WillReturnRows(rows)

		item, err := repo.FindByIDForUpdate(context.Background(), shopID, itemID)
		require.NoError(t, err)
		assert.Equal(t, 12, item.OnHandQuantity)
		m.ExpectationsWereMet(t)
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		m := testutil.NewMockDB(t)
		repo := persistence.NewGormStockItemRepository(m.DB)

		m.Mock.ExpectQuery(`SELECT \* FROM "stock_items"`).WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByIDForUpdate(context.Background(), uuid.New(), uuid.New())
		assert.Nil(t, item)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		m.ExpectationsWereMet(t)
	})
}

func TestGormSaleRepository_FindByIDForUpdate_LocksHeaderOnly(t *testing.T) {
	m := testutil.NewMockDB(t)
	repo := persistence.NewGormSaleRepository(m.DB)
	shopID, saleID := uuid.New(), uuid.New()

	m.Mock.ExpectQuery(`SELECT \* FROM "sales" WHERE \(?shop_id = \$1 AND id = \$2\)? .* FOR UPDATE`).
		WithArgs(shopID, saleID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "is_paid"}).AddRow(saleID, shopID, true))

	sale, err := repo.FindByIDForUpdate(context.Background(), shopID, saleID)
	require.NoError(t, err)
	assert.True(t, sale.IsPaid)
	assert.Empty(t, sale.Lines)
	m.ExpectationsWereMet(t)
}

func TestGormDebtRepository_FindOverdue_UsesCivilDate(t *testing.T) {
	m := testutil.NewMockDB(t)
	repo := persistence.NewGormDebtRepository(m.DB)
	shopID := uuid.New()

	eat := time.FixedZone("EAT", 3*3600)
	today := time.Date(2025, 3, 10, 1, 30, 0, 0, eat)

	m.Mock.ExpectQuery(`SELECT \* FROM "debts" WHERE shop_id = \$1 AND status <> \$2 AND due_date < \$3 ORDER BY due_date ASC,id ASC`).
		WithArgs(shopID, "paid", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	debts, err := repo.FindOverdue(context.Background(), shopID, today)
	require.NoError(t, err)
	assert.Empty(t, debts)
	m.ExpectationsWereMet(t)
}

func TestGormCustomerRepository_Delete_NotFound(t *testing.T) {
	m := testutil.NewMockDB(t)
	repo := persistence.NewGormCustomerRepository(m.DB)

	m.Mock.ExpectExec(`DELETE FROM "customers" WHERE \(?shop_id = \$1 AND id = \$2\)?`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	m.ExpectationsWereMet(t)
}

func TestValidateSort(t *testing.T) {
	allowed := map[string]bool{"name": true}
	assert.Equal(t, "name", persistence.ValidateSortField(" name ", allowed, "created_at"))
	assert.Equal(t, "created_at", persistence.ValidateSortField("name; DROP TABLE", allowed, "created_at"))
	assert.Equal(t, "ASC", persistence.ValidateSortOrder("asc"))
	assert.Equal(t, "DESC", persistence.ValidateSortOrder("sideways"))
}
