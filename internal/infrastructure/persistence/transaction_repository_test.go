package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// newMockTransactionRepository creates a GormTransactionRepository with a mocked SQL connection
func newMockTransactionRepository(t *testing.T) (*GormTransactionRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormTransactionRepository(gormDB), mock, mockDB
}

func TestGormTransactionRepository_Create(t *testing.T) {
	t.Run("appends a ledger entry", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txn, err := inventory.NewTransaction(uuid.New(), uuid.New(),
			inventory.TransactionTypeStockIn, decimal.NewFromInt(10))
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "inventory_transactions"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(context.Background(), txn)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByID(t *testing.T) {
	t.Run("finds existing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		productID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "product_id", "warehouse_id", "type", "quantity",
			"unit_cost", "reference_number", "occurred_at",
		}).AddRow(
			entryID, productID, warehouseID, "stock_in", decimal.NewFromInt(10),
			decimal.Zero, "", time.Now(),
		)

		mock.ExpectQuery(`SELECT \* FROM "inventory_transactions" WHERE id = \$1`).
			WithArgs(entryID, 1).
			WillReturnRows(rows)

		txn, err := repo.FindByID(context.Background(), entryID)

		require.NoError(t, err)
		assert.Equal(t, entryID, txn.ID)
		assert.Equal(t, inventory.TransactionTypeStockIn, txn.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing entry maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "inventory_transactions" WHERE id = \$1`).
			WithArgs(entryID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), entryID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_SumForPair(t *testing.T) {
	t.Run("sums signed quantities", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) as total FROM "inventory_transactions" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromInt(7)))

		sum, err := repo.SumForPair(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(7)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByReference(t *testing.T) {
	t.Run("returns all entries sharing the reference", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "product_id", "type", "quantity", "reference_number"}).
			AddRow(uuid.New(), productID, "transfer", decimal.NewFromInt(-5), "TRF-abc").
			AddRow(uuid.New(), productID, "transfer", decimal.NewFromInt(5), "TRF-abc")

		mock.ExpectQuery(`SELECT \* FROM "inventory_transactions" WHERE reference_number = \$1`).
			WithArgs("TRF-abc").
			WillReturnRows(rows)

		txns, err := repo.FindByReference(context.Background(), "TRF-abc")

		require.NoError(t, err)
		assert.Len(t, txns, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_Count(t *testing.T) {
	t.Run("applies type filter", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory_transactions" WHERE type = \$1`).
			WithArgs("sale").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		filter := shared.Filter{Filters: map[string]interface{}{"type": "sale"}}
		count, err := repo.Count(context.Background(), filter)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
