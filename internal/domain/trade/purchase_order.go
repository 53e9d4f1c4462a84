package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the lifecycle state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is one of the known values
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusApproved, PurchaseOrderStatusOrdered,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusApproved || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusOrdered || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusOrdered:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	default:
		return false
	}
}

// PurchaseOrderItem is one line of a purchase order. ReceivedQuantity is
// cumulative and monotone: receipts report the new total received so far,
// never a relative increment, and it can never exceed OrderedQuantity.
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName specifies the database table name
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// IsFullyReceived checks if the received quantity has reached the ordered one
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.OrderedQuantity)
}

// OutstandingQuantity returns what is still expected from the supplier
func (i *PurchaseOrderItem) OutstandingQuantity() decimal.Decimal {
	outstanding := i.OrderedQuantity.Sub(i.ReceivedQuantity)
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// Subtotal returns the line total at the ordered quantity
func (i *PurchaseOrderItem) Subtotal() decimal.Decimal {
	return i.OrderedQuantity.Mul(i.UnitCost)
}

// PurchaseOrder is the replenishment aggregate. It moves through
// pending, approved, ordered and ends in received or cancelled; receipts are
// only accepted while ordered, and the received state is entered automatically
// once every item is fully received.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string              `gorm:"type:varchar(32);not null;uniqueIndex"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;index"`
	OrderDate    time.Time           `gorm:"not null"`
	ExpectedDate *time.Time
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Notes        string              `gorm:"type:text"`
	CancelReason string              `gorm:"type:text"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
}

// TableName specifies the database table name
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a purchase order in pending state. The warehouse
// is where received goods will be booked into stock.
func NewPurchaseOrder(orderNumber string, supplierID, warehouseID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID is required")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		Status:            PurchaseOrderStatusPending,
		OrderDate:         time.Now(),
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseOrderItem, 0),
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// WithExpectedDate sets the expected delivery date
func (o *PurchaseOrder) WithExpectedDate(expected time.Time) *PurchaseOrder {
	o.ExpectedDate = &expected
	return o
}

// WithNotes sets free-form notes
func (o *PurchaseOrder) WithNotes(notes string) *PurchaseOrder {
	o.Notes = notes
	return o
}

// AddItem adds a line to a pending order
func (o *PurchaseOrder) AddItem(productID uuid.UUID, quantity, unitCost decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION", "Items can only be added to a pending order")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if !quantity.IsPositive() {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit cost cannot be negative")
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return shared.NewDomainError("ALREADY_EXISTS", "Product already present on this order")
		}
	}

	o.Items = append(o.Items, PurchaseOrderItem{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  o.ID,
		ProductID:        productID,
		OrderedQuantity:  quantity,
		ReceivedQuantity: decimal.Zero,
		UnitCost:         unitCost,
	})
	o.recalculateTotal()
	return nil
}

// Approve moves the order from pending to approved
func (o *PurchaseOrder) Approve() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Cannot approve an order without items")
	}
	if err := o.transitionTo(PurchaseOrderStatusApproved); err != nil {
		return err
	}
	o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o))
	return nil
}

// MarkOrdered moves the order from approved to ordered, meaning it has been
// placed with the supplier and receipts may begin
func (o *PurchaseOrder) MarkOrdered() error {
	if err := o.transitionTo(PurchaseOrderStatusOrdered); err != nil {
		return err
	}
	o.AddDomainEvent(NewPurchaseOrderOrderedEvent(o))
	return nil
}

// Cancel terminates the order from any non-terminal state
func (o *PurchaseOrder) Cancel(reason string) error {
	if err := o.transitionTo(PurchaseOrderStatusCancelled); err != nil {
		return err
	}
	o.CancelReason = reason
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))
	return nil
}

// ApplyReceipt records a cumulative received quantity against one item and
// returns the positive delta newly received, zero when the reported total
// matches what was already recorded. The order must be in ordered state.
func (o *PurchaseOrder) ApplyReceipt(itemID uuid.UUID, cumulativeQuantity decimal.Decimal) (decimal.Decimal, error) {
	if o.Status != PurchaseOrderStatusOrdered {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Receipts are only accepted while the order is in ordered state")
	}
	if cumulativeQuantity.IsNegative() {
		return decimal.Zero, shared.ErrInvalidQuantity
	}

	for idx := range o.Items {
		item := &o.Items[idx]
		if item.ID != itemID {
			continue
		}
		if cumulativeQuantity.LessThan(item.ReceivedQuantity) {
			return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY",
				"Received quantity cannot decrease")
		}
		if cumulativeQuantity.GreaterThan(item.OrderedQuantity) {
			return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY",
				"Received quantity cannot exceed the ordered quantity")
		}
		delta := cumulativeQuantity.Sub(item.ReceivedQuantity)
		item.ReceivedQuantity = cumulativeQuantity
		return delta, nil
	}
	return decimal.Zero, shared.NewDomainError("NOT_FOUND", "Order item not found")
}

// IsFullyReceived checks if every item has been fully received
func (o *PurchaseOrder) IsFullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return true
}

// MarkReceived completes the order once all items are in
func (o *PurchaseOrder) MarkReceived() error {
	if !o.IsFullyReceived() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Order still has outstanding items")
	}
	if err := o.transitionTo(PurchaseOrderStatusReceived); err != nil {
		return err
	}
	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o))
	return nil
}

// FindItem returns the item with the given ID, or nil
func (o *PurchaseOrder) FindItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) transitionTo(target PurchaseOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"Cannot transition order from "+string(o.Status)+" to "+string(target))
	}
	o.Status = target
	return nil
}

func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
}
