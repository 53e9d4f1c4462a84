package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/inventory"
)

// RecordEntryRequest describes a single ledger entry to append. Quantity is
// the signed delta.
type RecordEntryRequest struct {
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	Type            inventory.TransactionType
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	ReferenceNumber string
	Notes           string
	ActorID         *uuid.UUID
	OccurredAt      *time.Time
}

// RecordEntryResult carries the committed entry and the stock level after it
// was applied
type RecordEntryResult struct {
	Entry *inventory.Transaction `json:"entry"`
	Level *inventory.StockLevel  `json:"level"`
}

// AdjustRequest corrects a pair's quantity from an observed count. The delta
// written to the ledger is NewQuantity minus OldQuantity.
type AdjustRequest struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	OldQuantity decimal.Decimal
	NewQuantity decimal.Decimal
	Reason      string
	ActorID     *uuid.UUID
}

// ReturnDirection distinguishes customer returns (stock increases) from
// returns to the supplier (stock decreases)
type ReturnDirection string

const (
	ReturnFromCustomer ReturnDirection = "from_customer"
	ReturnToSupplier   ReturnDirection = "to_supplier"
)

// IsValid checks if the direction is one of the known values
func (d ReturnDirection) IsValid() bool {
	return d == ReturnFromCustomer || d == ReturnToSupplier
}

// TransferRequest moves a quantity of one product between two warehouses
type TransferRequest struct {
	ProductID       uuid.UUID
	SourceWarehouse uuid.UUID
	DestWarehouse   uuid.UUID
	Quantity        decimal.Decimal
	Notes           string
	ActorID         *uuid.UUID
	IdempotencyKey  string
}

// TransferResult reports the outcome of a transfer. When Compensated is true
// the destination leg failed and a compensating adjustment restored the
// source; the ledger then holds the out leg plus the rollback entry.
type TransferResult struct {
	ReferenceNumber string                 `json:"reference_number"`
	OutEntry        *inventory.Transaction `json:"out_entry,omitempty"`
	InEntry         *inventory.Transaction `json:"in_entry,omitempty"`
	SourceLevel     *inventory.StockLevel  `json:"source_level,omitempty"`
	DestLevel       *inventory.StockLevel  `json:"dest_level,omitempty"`
	Compensated     bool                   `json:"compensated"`
	Warning         string                 `json:"warning,omitempty"`
}

// ReorderSuggestion pairs a stock level below its reorder point with the
// quantity that would restore the configured maximum
type ReorderSuggestion struct {
	Level             inventory.StockLevel `json:"level"`
	SuggestedQuantity decimal.Decimal      `json:"suggested_quantity"`
}
