package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
)

func newOrderRepo(t *testing.T) *GormPurchaseOrderRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&trade.PurchaseOrder{}, &trade.PurchaseOrderItem{})
	require.NoError(t, err)

	return NewGormPurchaseOrderRepository(db)
}

func seedOrder(t *testing.T, repo *GormPurchaseOrderRepository) *trade.PurchaseOrder {
	t.Helper()
	orderNumber, err := repo.NextOrderNumber(context.Background(), time.Now())
	require.NoError(t, err)

	order, err := trade.NewPurchaseOrder(orderNumber, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.AddItem(uuid.New(), decimal.NewFromInt(10), decimal.NewFromInt(3)))
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestGormPurchaseOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the order with its items", func(t *testing.T) {
		repo := newOrderRepo(t)
		order := seedOrder(t, repo)

		found, err := repo.FindByID(ctx, order.ID)

		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, found.OrderNumber)
		assert.Equal(t, trade.PurchaseOrderStatusPending, found.Status)
		require.Len(t, found.Items, 1)
		assert.True(t, found.Items[0].OrderedQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("finds by order number", func(t *testing.T) {
		repo := newOrderRepo(t)
		order := seedOrder(t, repo)

		found, err := repo.FindByOrderNumber(ctx, order.OrderNumber)

		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := newOrderRepo(t)

		_, err := repo.FindByID(ctx, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPurchaseOrderRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("persists status and item changes", func(t *testing.T) {
		repo := newOrderRepo(t)
		order := seedOrder(t, repo)
		require.NoError(t, order.Approve())
		require.NoError(t, order.MarkOrdered())

		_, err := order.ApplyReceipt(order.Items[0].ID, decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PurchaseOrderStatusOrdered, found.Status)
		assert.True(t, found.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(4)))
	})
}

func TestGormPurchaseOrderRepository_NextOrderNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("numbers are sequential within a day", func(t *testing.T) {
		repo := newOrderRepo(t)
		day := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

		first, err := repo.NextOrderNumber(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "PO-20260831-0001", first)

		order, err := trade.NewPurchaseOrder(first, uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, order.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, repo.Create(ctx, order))

		second, err := repo.NextOrderNumber(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, "PO-20260831-0002", second)
	})

	t.Run("sequence restarts each day", func(t *testing.T) {
		repo := newOrderRepo(t)
		day := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

		orderNumber, err := repo.NextOrderNumber(ctx, day)
		require.NoError(t, err)
		order, err := trade.NewPurchaseOrder(orderNumber, uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, order.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, repo.Create(ctx, order))

		next, err := repo.NextOrderNumber(ctx, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, "PO-20260901-0001", next)
	})
}

func TestGormPurchaseOrderRepository_FindAll(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by status", func(t *testing.T) {
		repo := newOrderRepo(t)
		pending := seedOrder(t, repo)
		approved := seedOrder(t, repo)
		require.NoError(t, approved.Approve())
		require.NoError(t, repo.Save(ctx, approved))

		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(trade.PurchaseOrderStatusPending)

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, pending.ID, orders[0].ID)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
