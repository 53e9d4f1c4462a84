package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ReconciliationResult reports the outcome of rebuilding one stock level row
// from the ledger
type ReconciliationResult struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Previous    decimal.Decimal `json:"previous"`
	Corrected   decimal.Decimal `json:"corrected"`
}

// Drift returns the difference between the corrected and the previously
// stored quantity; zero means the projection matched the ledger
func (r *ReconciliationResult) Drift() decimal.Decimal {
	return r.Corrected.Sub(r.Previous)
}

// HasDrift reports whether the stored quantity diverged from the ledger sum
func (r *ReconciliationResult) HasDrift() bool {
	return !r.Drift().IsZero()
}

// TransactionRepository persists ledger entries. The ledger is append-only:
// there are no update or delete operations.
type TransactionRepository interface {
	// Create appends a new ledger entry
	Create(ctx context.Context, txn *Transaction) error
	// FindByID retrieves a single entry
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// FindByPair retrieves entries for a product/warehouse pair, newest first
	FindByPair(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	// FindByReference retrieves all entries sharing a reference number,
	// e.g. both legs of a transfer
	FindByReference(ctx context.Context, reference string) ([]Transaction, error)
	// FindAll retrieves entries matching the filter (product_id, warehouse_id,
	// type, date_from, date_to), paginated
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, error)
	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// SumForPair returns the signed sum of all deltas for a pair, the
	// authoritative on-hand quantity
	SumForPair(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error)
}

// StockLevelRepository maintains the materialized stock view. Quantity
// mutations are expressed as atomic relative increments so that concurrent
// movements on the same pair commute without read-modify-write races.
type StockLevelRepository interface {
	// FindByPair retrieves the level for a product/warehouse pair
	FindByPair(ctx context.Context, productID, warehouseID uuid.UUID) (*StockLevel, error)
	// FindByWarehouse retrieves all levels in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockLevel, error)
	// FindAll retrieves levels matching the filter (product_id, warehouse_id)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockLevel, error)
	// FindLowStock retrieves levels at or below their minimum stock
	FindLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]StockLevel, error)
	// FindReorderRequired retrieves levels at or below their reorder point
	FindReorderRequired(ctx context.Context, warehouseID *uuid.UUID) ([]StockLevel, error)
	// ApplyDelta atomically adds the signed delta to the pair's quantity,
	// creating the row if it does not exist, and returns the updated level
	ApplyDelta(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*StockLevel, error)
	// ApplyDeltaGuarded behaves like ApplyDelta but refuses to let the
	// quantity go negative, returning shared.ErrInsufficientStock instead.
	// A missing row counts as zero stock.
	ApplyDeltaGuarded(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*StockLevel, error)
	// SetThresholds updates the replenishment thresholds for a pair,
	// creating the row at quantity zero if it does not exist
	SetThresholds(ctx context.Context, productID, warehouseID uuid.UUID, minStock, maxStock, reorderPoint decimal.Decimal) (*StockLevel, error)
	// Reconcile rebuilds the pair's quantity from the ledger sum under a row
	// lock and reports the previous and corrected values
	Reconcile(ctx context.Context, productID, warehouseID uuid.UUID) (*ReconciliationResult, error)
	// Count returns the number of levels matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
