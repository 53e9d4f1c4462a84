package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&inventory.StockLevel{}, &inventory.Transaction{})
	require.NoError(t, err)
	return db
}

func newStockRepos(t *testing.T) (*GormStockLevelRepository, *GormTransactionRepository) {
	t.Helper()
	db := setupStockTestDB(t)
	defaults := StockDefaults{
		MinStock:     decimal.NewFromInt(5),
		MaxStock:     decimal.NewFromInt(100),
		ReorderPoint: decimal.NewFromInt(10),
	}
	return NewGormStockLevelRepository(db, defaults), NewGormTransactionRepository(db)
}

func TestGormStockLevelRepository_ApplyDelta(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the row on first movement with default thresholds", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		level, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(10))

		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, level.MinStock.Equal(decimal.NewFromInt(5)))
		assert.True(t, level.ReorderPoint.Equal(decimal.NewFromInt(10)))
	})

	t.Run("accumulates deltas on the same pair", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(10))
		require.NoError(t, err)
		level, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(-4))
		require.NoError(t, err)

		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(6)))

		// only one row exists for the pair
		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormStockLevelRepository_ApplyDeltaGuarded(t *testing.T) {
	ctx := context.Background()

	t.Run("applies decrement when stock suffices", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(10))
		require.NoError(t, err)

		level, err := repo.ApplyDeltaGuarded(ctx, productID, warehouseID, decimal.NewFromInt(-10))

		require.NoError(t, err)
		assert.True(t, level.Quantity.IsZero())
	})

	t.Run("refuses decrement below zero", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(3))
		require.NoError(t, err)

		_, err = repo.ApplyDeltaGuarded(ctx, productID, warehouseID, decimal.NewFromInt(-5))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		level, err := repo.FindByPair(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("missing row counts as zero stock", func(t *testing.T) {
		repo, _ := newStockRepos(t)

		_, err := repo.ApplyDeltaGuarded(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(-1))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("positive delta on missing row creates it", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		level, err := repo.ApplyDeltaGuarded(ctx, productID, warehouseID, decimal.NewFromInt(7))

		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))
	})
}

func TestGormStockLevelRepository_SetThresholds(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the row at quantity zero when absent", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		level, err := repo.SetThresholds(ctx, productID, warehouseID,
			decimal.NewFromInt(2), decimal.NewFromInt(40), decimal.NewFromInt(8))

		require.NoError(t, err)
		assert.True(t, level.Quantity.IsZero())
		assert.True(t, level.MaxStock.Equal(decimal.NewFromInt(40)))
	})

	t.Run("preserves the quantity on existing rows", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(12))
		require.NoError(t, err)

		level, err := repo.SetThresholds(ctx, productID, warehouseID,
			decimal.NewFromInt(2), decimal.NewFromInt(40), decimal.NewFromInt(8))

		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(12)))
		assert.True(t, level.ReorderPoint.Equal(decimal.NewFromInt(8)))
	})
}

func TestGormStockLevelRepository_Reconcile(t *testing.T) {
	ctx := context.Background()

	seedEntry := func(t *testing.T, txns *GormTransactionRepository, productID, warehouseID uuid.UUID, qty int64) {
		t.Helper()
		txn, err := inventory.NewTransaction(productID, warehouseID,
			inventory.TransactionTypeAdjustment, decimal.NewFromInt(qty))
		require.NoError(t, err)
		require.NoError(t, txns.Create(ctx, txn))
	}

	t.Run("overwrites the projection with the ledger sum", func(t *testing.T) {
		repo, txns := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		seedEntry(t, txns, productID, warehouseID, 10)
		seedEntry(t, txns, productID, warehouseID, -3)

		// projection deliberately out of sync with the ledger
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(99))
		require.NoError(t, err)

		result, err := repo.Reconcile(ctx, productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, result.Previous.Equal(decimal.NewFromInt(99)))
		assert.True(t, result.Corrected.Equal(decimal.NewFromInt(7)))
		assert.True(t, result.HasDrift())

		level, err := repo.FindByPair(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))
	})

	t.Run("empty ledger reconciles to zero", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(4))
		require.NoError(t, err)

		result, err := repo.Reconcile(ctx, productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, result.Corrected.IsZero())
	})

	t.Run("unknown pair is not found", func(t *testing.T) {
		repo, _ := newStockRepos(t)

		_, err := repo.Reconcile(ctx, uuid.New(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("locks the pair row on postgres before rebuilding", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		gormDB, err := gorm.Open(postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)
		repo := NewGormStockLevelRepository(gormDB, StockDefaults{})

		productID, warehouseID := uuid.New(), uuid.New()
		pairColumns := []string{"id", "product_id", "warehouse_id", "quantity"}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE product_id = \$1 AND warehouse_id = \$2 .* FOR UPDATE`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(pairColumns).
				AddRow(uuid.New(), productID, warehouseID, decimal.NewFromInt(9)))
		mock.ExpectExec(`UPDATE "stock_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(pairColumns).
				AddRow(uuid.New(), productID, warehouseID, decimal.NewFromInt(7)))
		mock.ExpectCommit()

		result, err := repo.Reconcile(ctx, productID, warehouseID)

		require.NoError(t, err)
		assert.True(t, result.Previous.Equal(decimal.NewFromInt(9)))
		assert.True(t, result.Corrected.Equal(decimal.NewFromInt(7)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_ThresholdQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("finds low stock and reorder candidates", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()

		// defaults: min 5, reorder 10; quantity 4 is below both
		_, err := repo.ApplyDelta(ctx, productID, warehouseID, decimal.NewFromInt(4))
		require.NoError(t, err)
		// healthy pair
		_, err = repo.ApplyDelta(ctx, uuid.New(), warehouseID, decimal.NewFromInt(50))
		require.NoError(t, err)

		low, err := repo.FindLowStock(ctx, &warehouseID)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, productID, low[0].ProductID)

		reorder, err := repo.FindReorderRequired(ctx, nil)
		require.NoError(t, err)
		require.Len(t, reorder, 1)
		assert.Equal(t, productID, reorder[0].ProductID)
	})

	t.Run("zero thresholds disable the checks", func(t *testing.T) {
		repo, _ := newStockRepos(t)
		productID, warehouseID := uuid.New(), uuid.New()
		_, err := repo.SetThresholds(ctx, productID, warehouseID,
			decimal.Zero, decimal.Zero, decimal.Zero)
		require.NoError(t, err)

		low, err := repo.FindLowStock(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, low)
	})
}
