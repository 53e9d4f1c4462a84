package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	// Create persists a new order with its items
	Create(ctx context.Context, order *PurchaseOrder) error
	// FindByID retrieves an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate retrieves an order holding a row lock for the
	// duration of the surrounding transaction, serializing concurrent
	// receipts against the same order
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByOrderNumber retrieves an order by its business key
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	// FindAll retrieves orders matching the filter (status, supplier_id),
	// paginated
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save persists changes to an order and its items
	Save(ctx context.Context, order *PurchaseOrder) error
	// NextOrderNumber generates the next sequential order number for the day
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
}
