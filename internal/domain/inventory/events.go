package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Event types for the inventory domain
const (
	EventTypeTransactionRecorded = "inventory.transaction_recorded"
	EventTypeStockBelowReorder   = "inventory.stock_below_reorder_point"
	EventTypeReconciliationDrift = "inventory.reconciliation_drift_detected"
	EventTypeTransferCompensated = "inventory.transfer_compensated"

	aggregateTypeTransaction = "Transaction"
	aggregateTypeStockLevel  = "StockLevel"
)

// TransactionRecordedEvent is published after a ledger entry is committed
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID       `json:"product_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

// NewTransactionRecordedEvent creates a transaction recorded event
func NewTransactionRecordedEvent(txn *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, aggregateTypeTransaction, txn.ID),
		ProductID:       txn.ProductID,
		WarehouseID:     txn.WarehouseID,
		TransactionType: txn.Type,
		Quantity:        txn.Quantity,
		ReferenceNumber: txn.ReferenceNumber,
	}
}

// StockBelowReorderPointEvent is published when a movement leaves the on-hand
// quantity at or below the configured reorder point
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID       `json:"product_id"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
}

// NewStockBelowReorderPointEvent creates a below reorder point event
func NewStockBelowReorderPointEvent(level *StockLevel) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorder, aggregateTypeStockLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Quantity:        level.Quantity,
		ReorderPoint:    level.ReorderPoint,
	}
}

// ReconciliationDriftEvent is published when reconciliation finds the stored
// quantity diverging from the ledger sum
type ReconciliationDriftEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Previous    decimal.Decimal `json:"previous"`
	Corrected   decimal.Decimal `json:"corrected"`
	Drift       decimal.Decimal `json:"drift"`
}

// NewReconciliationDriftEvent creates a reconciliation drift event
func NewReconciliationDriftEvent(result *ReconciliationResult) *ReconciliationDriftEvent {
	return &ReconciliationDriftEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationDrift, aggregateTypeStockLevel, result.ProductID),
		ProductID:       result.ProductID,
		WarehouseID:     result.WarehouseID,
		Previous:        result.Previous,
		Corrected:       result.Corrected,
		Drift:           result.Drift(),
	}
}

// TransferCompensatedEvent is published when a failed transfer is rolled back
// with a compensating ledger entry
type TransferCompensatedEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID       `json:"product_id"`
	SourceWarehouse uuid.UUID       `json:"source_warehouse_id"`
	DestWarehouse   uuid.UUID       `json:"dest_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceNumber string          `json:"reference_number"`
	Reason          string          `json:"reason"`
}

// NewTransferCompensatedEvent creates a transfer compensated event
func NewTransferCompensatedEvent(productID, sourceWarehouse, destWarehouse uuid.UUID, quantity decimal.Decimal, reference, reason string) *TransferCompensatedEvent {
	return &TransferCompensatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompensated, aggregateTypeTransaction, productID),
		ProductID:       productID,
		SourceWarehouse: sourceWarehouse,
		DestWarehouse:   destWarehouse,
		Quantity:        quantity,
		ReferenceNumber: reference,
		Reason:          reason,
	}
}
