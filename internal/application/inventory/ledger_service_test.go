package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

type ledgerFixture struct {
	service     *LedgerService
	levels      *fakeStockLevelRepository
	txns        *fakeTransactionRepository
	bus         *fakeEventBus
	productID   uuid.UUID
	warehouseID uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	levels := newFakeStockLevelRepository()
	txns := newFakeTransactionRepository()
	levels.ledger = txns
	bus := &fakeEventBus{}
	productID := uuid.New()
	warehouseID := uuid.New()

	scope := NewNoOpTransactionScope(StaticRepositories{
		StockLevelRepo:  levels,
		TransactionRepo: txns,
	})
	service := NewLedgerService(scope, txns,
		newFakeExistenceRepository(productID),
		newFakeExistenceRepository(warehouseID),
		bus, zap.NewNop())

	return &ledgerFixture{
		service:     service,
		levels:      levels,
		txns:        txns,
		bus:         bus,
		productID:   productID,
		warehouseID: warehouseID,
	}
}

func (f *ledgerFixture) seedStock(t *testing.T, quantity int64) {
	t.Helper()
	_, err := f.service.Record(context.Background(), RecordEntryRequest{
		ProductID:   f.productID,
		WarehouseID: f.warehouseID,
		Type:        inventory.TransactionTypeStockIn,
		Quantity:    decimal.NewFromInt(quantity),
	})
	require.NoError(t, err)
}

func TestLedgerService_Record(t *testing.T) {
	t.Run("appends entry and applies delta", func(t *testing.T) {
		f := newLedgerFixture(t)

		result, err := f.service.Record(context.Background(), RecordEntryRequest{
			ProductID:   f.productID,
			WarehouseID: f.warehouseID,
			Type:        inventory.TransactionTypeStockIn,
			Quantity:    decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		assert.True(t, result.Level.Quantity.Equal(decimal.NewFromInt(10)))
		assert.Len(t, f.txns.entries, 1)
		assert.Equal(t, 1, f.bus.published(inventory.EventTypeTransactionRecorded))
	})

	t.Run("creates stock level lazily on first movement", func(t *testing.T) {
		f := newLedgerFixture(t)
		assert.Nil(t, f.levels.get(f.productID, f.warehouseID))

		f.seedStock(t, 5)

		level := f.levels.get(f.productID, f.warehouseID)
		require.NotNil(t, level)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("rejects outbound movement exceeding stock", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 3)

		_, err := f.service.RecordSale(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(5), "SO-1", nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		// the failed movement must leave no ledger trace
		assert.Len(t, f.txns.entries, 1)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.service.Record(context.Background(), RecordEntryRequest{
			ProductID:   uuid.New(),
			WarehouseID: f.warehouseID,
			Type:        inventory.TransactionTypeStockIn,
			Quantity:    decimal.NewFromInt(1),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("rejects unknown warehouse", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.service.Record(context.Background(), RecordEntryRequest{
			ProductID:   f.productID,
			WarehouseID: uuid.New(),
			Type:        inventory.TransactionTypeStockIn,
			Quantity:    decimal.NewFromInt(1),
		})

		assert.Error(t, err)
	})

	t.Run("refuses transfer entries", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.service.Record(context.Background(), RecordEntryRequest{
			ProductID:   f.productID,
			WarehouseID: f.warehouseID,
			Type:        inventory.TransactionTypeTransfer,
			Quantity:    decimal.NewFromInt(1),
		})

		assert.Error(t, err)
	})

	t.Run("publishes reorder alert when threshold is crossed", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 30)
		_, err := f.levels.SetThresholds(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(5), decimal.NewFromInt(50), decimal.NewFromInt(20))
		require.NoError(t, err)

		_, err = f.service.RecordSale(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(15), "SO-2", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, f.bus.published(inventory.EventTypeStockBelowReorder))
	})
}

func TestLedgerService_Adjust(t *testing.T) {
	t.Run("writes delta between old and new quantity", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 10)

		result, err := f.service.Adjust(context.Background(), AdjustRequest{
			ProductID:   f.productID,
			WarehouseID: f.warehouseID,
			OldQuantity: decimal.NewFromInt(10),
			NewQuantity: decimal.NewFromInt(7),
			Reason:      "cycle count",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.TransactionTypeAdjustment, result.Entry.Type)
		assert.True(t, result.Entry.Quantity.Equal(decimal.NewFromInt(-3)))
		assert.True(t, result.Level.Quantity.Equal(decimal.NewFromInt(7)))
		assert.Equal(t, "cycle count", result.Entry.Notes)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 10)

		_, err := f.service.Adjust(context.Background(), AdjustRequest{
			ProductID:   f.productID,
			WarehouseID: f.warehouseID,
			OldQuantity: decimal.NewFromInt(10),
			NewQuantity: decimal.NewFromInt(10),
		})

		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects negative target quantity", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.service.Adjust(context.Background(), AdjustRequest{
			ProductID:   f.productID,
			WarehouseID: f.warehouseID,
			OldQuantity: decimal.NewFromInt(2),
			NewQuantity: decimal.NewFromInt(-1),
		})

		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestLedgerService_ConcurrentRecords(t *testing.T) {
	t.Run("concurrent adjustments on one pair sum to initial plus all deltas", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 100)

		deltas := []int64{3, -2, 7, -5, 1, 4, -3, 6, -1, 2, 5, -4, 8, -6, 1, 9}
		expected := int64(100)
		for _, d := range deltas {
			expected += d
		}

		var wg sync.WaitGroup
		errCh := make(chan error, len(deltas))
		for _, d := range deltas {
			wg.Add(1)
			go func(delta int64) {
				defer wg.Done()
				_, err := f.service.Record(context.Background(), RecordEntryRequest{
					ProductID:   f.productID,
					WarehouseID: f.warehouseID,
					Type:        inventory.TransactionTypeAdjustment,
					Quantity:    decimal.NewFromInt(delta),
					Notes:       "cycle count",
				})
				errCh <- err
			}(d)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			require.NoError(t, err)
		}

		level := f.levels.get(f.productID, f.warehouseID)
		require.NotNil(t, level)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(expected)),
			"final quantity %s, want %d", level.Quantity, expected)
		// one seed entry plus one per adjustment
		assert.Len(t, f.txns.entries, len(deltas)+1)
	})
}

func TestLedgerService_PolicyWrappers(t *testing.T) {
	t.Run("receive purchase writes positive purchase entry", func(t *testing.T) {
		f := newLedgerFixture(t)

		result, err := f.service.ReceivePurchase(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(20), decimal.NewFromFloat(1.5), "PO-20260831-0001", nil)

		require.NoError(t, err)
		assert.Equal(t, inventory.TransactionTypePurchase, result.Entry.Type)
		assert.True(t, result.Entry.Quantity.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, "PO-20260831-0001", result.Entry.ReferenceNumber)
	})

	t.Run("sale negates the quantity", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 10)

		result, err := f.service.RecordSale(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(4), "SO-9", nil)

		require.NoError(t, err)
		assert.True(t, result.Entry.Quantity.Equal(decimal.NewFromInt(-4)))
	})

	t.Run("return direction controls the sign", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 10)

		in, err := f.service.RecordReturn(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(2), ReturnFromCustomer, "RMA-1", nil)
		require.NoError(t, err)
		assert.True(t, in.Entry.Quantity.Equal(decimal.NewFromInt(2)))

		out, err := f.service.RecordReturn(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(3), ReturnToSupplier, "RMA-2", nil)
		require.NoError(t, err)
		assert.True(t, out.Entry.Quantity.Equal(decimal.NewFromInt(-3)))
	})

	t.Run("waste removes stock with a reason", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 10)

		result, err := f.service.RecordWaste(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(1), "expired", nil)

		require.NoError(t, err)
		assert.Equal(t, inventory.TransactionTypeWaste, result.Entry.Type)
		assert.True(t, result.Entry.Quantity.Equal(decimal.NewFromInt(-1)))
	})

	t.Run("wrappers reject non-positive quantities", func(t *testing.T) {
		f := newLedgerFixture(t)

		_, err := f.service.RecordSale(context.Background(), f.productID, f.warehouseID,
			decimal.Zero, "SO-0", nil)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		_, err = f.service.RecordWaste(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(-2), "bad", nil)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestLedgerService_Queries(t *testing.T) {
	t.Run("lists entries paginated", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.seedStock(t, 5)
		f.seedStock(t, 7)

		filter := shared.DefaultFilter()
		page, err := f.service.ListEntries(context.Background(), filter)

		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Items, 2)
	})

	t.Run("finds entries by reference", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.service.ReceivePurchase(context.Background(), f.productID, f.warehouseID,
			decimal.NewFromInt(5), decimal.Zero, "PO-X", nil)
		require.NoError(t, err)

		entries, err := f.service.ListByReference(context.Background(), "PO-X")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
