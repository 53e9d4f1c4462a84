package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

type transferFixture struct {
	service   *TransferService
	levels    *fakeStockLevelRepository
	txns      *fakeTransactionRepository
	bus       *fakeEventBus
	store     *fakeIdempotencyStore
	productID uuid.UUID
	source    uuid.UUID
	dest      uuid.UUID
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	levels := newFakeStockLevelRepository()
	txns := newFakeTransactionRepository()
	levels.ledger = txns
	bus := &fakeEventBus{}
	store := newFakeIdempotencyStore()
	productID := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	scope := NewNoOpTransactionScope(StaticRepositories{
		StockLevelRepo:  levels,
		TransactionRepo: txns,
	})
	service := NewTransferService(scope, txns,
		newFakeExistenceRepository(productID),
		newFakeExistenceRepository(source, dest),
		store, bus, zap.NewNop())

	f := &transferFixture{
		service:   service,
		levels:    levels,
		txns:      txns,
		bus:       bus,
		store:     store,
		productID: productID,
		source:    source,
		dest:      dest,
	}
	// seed the source warehouse
	_, err := levels.ApplyDelta(context.Background(), productID, source, decimal.NewFromInt(20))
	require.NoError(t, err)
	return f
}

func (f *transferFixture) request(qty int64) TransferRequest {
	return TransferRequest{
		ProductID:       f.productID,
		SourceWarehouse: f.source,
		DestWarehouse:   f.dest,
		Quantity:        decimal.NewFromInt(qty),
	}
}

func TestTransferService_Transfer(t *testing.T) {
	t.Run("writes two inverse legs sharing one reference", func(t *testing.T) {
		f := newTransferFixture(t)

		result, err := f.service.Transfer(context.Background(), f.request(8))

		require.NoError(t, err)
		assert.False(t, result.Compensated)
		assert.Contains(t, result.ReferenceNumber, "TRF-")

		require.NotNil(t, result.OutEntry)
		require.NotNil(t, result.InEntry)
		assert.Equal(t, inventory.TransactionTypeTransfer, result.OutEntry.Type)
		assert.Equal(t, inventory.TransactionTypeTransfer, result.InEntry.Type)
		assert.Equal(t, result.OutEntry.ReferenceNumber, result.InEntry.ReferenceNumber)
		assert.True(t, result.OutEntry.Quantity.Add(result.InEntry.Quantity).IsZero())

		assert.True(t, f.levels.get(f.productID, f.source).Quantity.Equal(decimal.NewFromInt(12)))
		assert.True(t, f.levels.get(f.productID, f.dest).Quantity.Equal(decimal.NewFromInt(8)))
	})

	t.Run("rejects insufficient source stock before writing anything", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.Transfer(context.Background(), f.request(25))

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Empty(t, f.txns.entries)
		assert.True(t, f.levels.get(f.productID, f.source).Quantity.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.Transfer(context.Background(), f.request(0))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		_, err = f.service.Transfer(context.Background(), f.request(-3))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("rejects identical warehouses", func(t *testing.T) {
		f := newTransferFixture(t)
		req := f.request(1)
		req.DestWarehouse = req.SourceWarehouse

		_, err := f.service.Transfer(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("rejects unknown product or warehouse", func(t *testing.T) {
		f := newTransferFixture(t)

		req := f.request(1)
		req.ProductID = uuid.New()
		_, err := f.service.Transfer(context.Background(), req)
		assert.Error(t, err)

		req = f.request(1)
		req.DestWarehouse = uuid.New()
		_, err = f.service.Transfer(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("compensates the source when the destination leg fails", func(t *testing.T) {
		f := newTransferFixture(t)
		f.levels.failInboundFor[f.dest] = errors.New("connection reset")

		result, err := f.service.Transfer(context.Background(), f.request(8))

		require.NoError(t, err)
		assert.True(t, result.Compensated)
		assert.NotEmpty(t, result.Warning)

		// source restored
		assert.True(t, f.levels.get(f.productID, f.source).Quantity.Equal(decimal.NewFromInt(20)))
		assert.Nil(t, f.levels.get(f.productID, f.dest))

		// ledger keeps the out leg plus the rollback entry, never deletes
		entries, err := f.txns.FindByReference(context.Background(), result.ReferenceNumber)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		sum := decimal.Zero
		var rollback *inventory.Transaction
		for idx := range entries {
			sum = sum.Add(entries[idx].Quantity)
			if entries[idx].Type == inventory.TransactionTypeAdjustment {
				rollback = &entries[idx]
			}
		}
		assert.True(t, sum.IsZero())
		require.NotNil(t, rollback)
		assert.Equal(t, "transfer rollback", rollback.Notes)

		assert.Equal(t, 1, f.bus.published(inventory.EventTypeTransferCompensated))
	})

	t.Run("reports corruption when compensation also fails", func(t *testing.T) {
		f := newTransferFixture(t)
		f.levels.failInboundFor[f.dest] = errors.New("connection reset")
		f.levels.failInboundFor[f.source] = errors.New("connection reset")

		_, err := f.service.Transfer(context.Background(), f.request(8))

		assert.ErrorIs(t, err, shared.ErrTransferCorrupted)
	})

	t.Run("deduplicates redriven transfers by idempotency key", func(t *testing.T) {
		f := newTransferFixture(t)
		req := f.request(2)
		req.IdempotencyKey = "cmd-123"

		_, err := f.service.Transfer(context.Background(), req)
		require.NoError(t, err)

		_, err = f.service.Transfer(context.Background(), req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)

		assert.True(t, f.levels.get(f.productID, f.source).Quantity.Equal(decimal.NewFromInt(18)))
	})

	t.Run("failed command releases its idempotency key for redrive", func(t *testing.T) {
		f := newTransferFixture(t)
		req := f.request(25)
		req.IdempotencyKey = "cmd-redrive"

		// more than the seeded 20, rejected before any write
		_, err := f.service.Transfer(context.Background(), req)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		// restock, then redrive the same command
		_, err = f.levels.ApplyDelta(context.Background(), f.productID, f.source, decimal.NewFromInt(10))
		require.NoError(t, err)

		result, err := f.service.Transfer(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Compensated)
		assert.True(t, f.levels.get(f.productID, f.dest).Quantity.Equal(decimal.NewFromInt(25)))
	})

	t.Run("compensated transfer keeps its idempotency key consumed", func(t *testing.T) {
		f := newTransferFixture(t)
		f.levels.failInboundFor[f.dest] = errors.New("connection reset")
		req := f.request(8)
		req.IdempotencyKey = "cmd-comp"

		result, err := f.service.Transfer(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.Compensated)

		// the source leg committed, so a redrive is a duplicate
		_, err = f.service.Transfer(context.Background(), req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestTransferService_FindByReference(t *testing.T) {
	t.Run("returns both legs", func(t *testing.T) {
		f := newTransferFixture(t)
		result, err := f.service.Transfer(context.Background(), f.request(5))
		require.NoError(t, err)

		entries, err := f.service.FindByReference(context.Background(), result.ReferenceNumber)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("unknown reference is not found", func(t *testing.T) {
		f := newTransferFixture(t)

		_, err := f.service.FindByReference(context.Background(), "TRF-missing")
		assert.Error(t, err)
	})
}
