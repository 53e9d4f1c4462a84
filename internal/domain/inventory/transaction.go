package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// TransactionType categorizes a ledger entry
type TransactionType string

const (
	TransactionTypeStockIn    TransactionType = "stock_in"
	TransactionTypeStockOut   TransactionType = "stock_out"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeAdjustment TransactionType = "adjustment"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeReturn     TransactionType = "return"
	TransactionTypeWaste      TransactionType = "waste"
)

// IsValid checks if the transaction type is one of the known values
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeStockIn, TransactionTypeStockOut, TransactionTypeTransfer,
		TransactionTypeAdjustment, TransactionTypePurchase, TransactionTypeSale,
		TransactionTypeReturn, TransactionTypeWaste:
		return true
	}
	return false
}

// AllowsDelta checks whether the signed quantity is admissible for this type.
// Inbound-only types require a positive delta, outbound-only types a negative
// one; transfer, adjustment and return entries carry either sign.
func (t TransactionType) AllowsDelta(quantity decimal.Decimal) bool {
	if quantity.IsZero() {
		return false
	}
	switch t {
	case TransactionTypeStockIn, TransactionTypePurchase:
		return quantity.IsPositive()
	case TransactionTypeStockOut, TransactionTypeSale, TransactionTypeWaste:
		return quantity.IsNegative()
	default:
		return true
	}
}

// Transaction is an immutable, append-only ledger entry describing a single
// stock movement. Quantity is a signed delta: positive values add stock to the
// warehouse, negative values remove it. Entries are never updated or deleted;
// corrections are expressed as new adjustment entries.
type Transaction struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_transactions_pair,priority:1"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_transactions_pair,priority:2"`
	Type            TransactionType `gorm:"type:varchar(20);not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceNumber string          `gorm:"type:varchar(64);index"`
	Notes           string          `gorm:"type:text"`
	ActorID         *uuid.UUID      `gorm:"type:uuid"`
	OccurredAt      time.Time       `gorm:"not null;index"`
}

// TableName specifies the database table name
func (Transaction) TableName() string {
	return "inventory_transactions"
}

// NewTransaction creates a validated ledger entry
func NewTransaction(productID, warehouseID uuid.UUID, txType TransactionType, quantity decimal.Decimal) (*Transaction, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid transaction type: "+string(txType))
	}
	if !txType.AllowsDelta(quantity) {
		return nil, shared.ErrInvalidQuantity
	}

	return &Transaction{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        txType,
		Quantity:    quantity,
		OccurredAt:  time.Now(),
	}, nil
}

// WithUnitCost sets the unit cost at the time of the movement
func (t *Transaction) WithUnitCost(unitCost decimal.Decimal) *Transaction {
	t.UnitCost = unitCost
	return t
}

// WithReference sets the reference number linking this entry to a source
// document or to the sibling leg of a transfer
func (t *Transaction) WithReference(reference string) *Transaction {
	t.ReferenceNumber = reference
	return t
}

// WithNotes sets free-form notes
func (t *Transaction) WithNotes(notes string) *Transaction {
	t.Notes = notes
	return t
}

// WithActor records who initiated the movement
func (t *Transaction) WithActor(actorID uuid.UUID) *Transaction {
	t.ActorID = &actorID
	return t
}

// WithOccurredAt overrides the movement timestamp, e.g. for backdated entries
func (t *Transaction) WithOccurredAt(occurredAt time.Time) *Transaction {
	t.OccurredAt = occurredAt
	return t
}

// IsInbound reports whether the entry adds stock
func (t *Transaction) IsInbound() bool {
	return t.Quantity.IsPositive()
}

// IsOutbound reports whether the entry removes stock
func (t *Transaction) IsOutbound() bool {
	return t.Quantity.IsNegative()
}

// AbsQuantity returns the unsigned magnitude of the movement
func (t *Transaction) AbsQuantity() decimal.Decimal {
	return t.Quantity.Abs()
}
