package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// StockLevel is the materialized on-hand quantity for one product in one
// warehouse, derived from the transaction ledger. Rows are created lazily on
// the first movement of a pair and are never hard-deleted; a pair that has
// been fully drained keeps its row at quantity zero.
type StockLevel struct {
	shared.BaseAggregateRoot
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_pair,priority:1"`
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_levels_pair,priority:2"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName specifies the database table name
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a stock level row for a product/warehouse pair
func NewStockLevel(productID, warehouseID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID is required")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
	}, nil
}

// ValidateThresholds checks a replenishment threshold triple
func ValidateThresholds(minStock, maxStock, reorderPoint decimal.Decimal) error {
	if minStock.IsNegative() || maxStock.IsNegative() || reorderPoint.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Thresholds cannot be negative")
	}
	if maxStock.GreaterThan(decimal.Zero) && minStock.GreaterThan(maxStock) {
		return shared.NewDomainError("INVALID_INPUT", "Minimum stock cannot exceed maximum stock")
	}
	return nil
}

// SetThresholds updates the replenishment thresholds
func (s *StockLevel) SetThresholds(minStock, maxStock, reorderPoint decimal.Decimal) error {
	if err := ValidateThresholds(minStock, maxStock, reorderPoint); err != nil {
		return err
	}

	s.MinStock = minStock
	s.MaxStock = maxStock
	s.ReorderPoint = reorderPoint
	return nil
}

// IsLowStock checks if the quantity has fallen to or below the minimum
func (s *StockLevel) IsLowStock() bool {
	return s.MinStock.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(s.MinStock)
}

// NeedsReorder checks if the quantity has fallen to or below the reorder point
func (s *StockLevel) NeedsReorder() bool {
	return s.ReorderPoint.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(s.ReorderPoint)
}

// IsAboveMaximum checks if the quantity exceeds the configured maximum
func (s *StockLevel) IsAboveMaximum() bool {
	return s.MaxStock.GreaterThan(decimal.Zero) && s.Quantity.GreaterThan(s.MaxStock)
}

// SuggestedOrderQuantity returns how much to order to restore the maximum
// level, or zero when no reorder is needed or no maximum is configured
func (s *StockLevel) SuggestedOrderQuantity() decimal.Decimal {
	if !s.NeedsReorder() || s.MaxStock.IsZero() {
		return decimal.Zero
	}
	suggested := s.MaxStock.Sub(s.Quantity)
	if suggested.IsNegative() {
		return decimal.Zero
	}
	return suggested
}
