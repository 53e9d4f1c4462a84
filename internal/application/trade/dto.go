package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one requested line on a new purchase order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreateOrderRequest describes a new purchase order. The warehouse is where
// received goods will be booked into stock.
type CreateOrderRequest struct {
	SupplierID   uuid.UUID
	WarehouseID  uuid.UUID
	ExpectedDate *time.Time
	Notes        string
	Items        []OrderItemInput
}

// ReceiptInput reports the cumulative received quantity for one order item
type ReceiptInput struct {
	ItemID           uuid.UUID
	ReceivedQuantity decimal.Decimal
}
