package trade

import (
	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Event types for the trade domain
const (
	EventTypePurchaseOrderCreated   = "trade.purchase_order_created"
	EventTypePurchaseOrderApproved  = "trade.purchase_order_approved"
	EventTypePurchaseOrderOrdered   = "trade.purchase_order_ordered"
	EventTypePurchaseOrderReceived  = "trade.purchase_order_received"
	EventTypePurchaseOrderCancelled = "trade.purchase_order_cancelled"

	aggregateTypePurchaseOrder = "PurchaseOrder"
)

// PurchaseOrderEvent carries the common purchase order event payload
type PurchaseOrderEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Status      string    `json:"status"`
}

func newPurchaseOrderEvent(eventType string, order *PurchaseOrder) PurchaseOrderEvent {
	return PurchaseOrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateTypePurchaseOrder, order.ID),
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		Status:          string(order.Status),
	}
}

// PurchaseOrderCreatedEvent is published when an order is created
type PurchaseOrderCreatedEvent struct {
	PurchaseOrderEvent
}

// NewPurchaseOrderCreatedEvent creates a purchase order created event
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{newPurchaseOrderEvent(EventTypePurchaseOrderCreated, order)}
}

// PurchaseOrderApprovedEvent is published when an order is approved
type PurchaseOrderApprovedEvent struct {
	PurchaseOrderEvent
}

// NewPurchaseOrderApprovedEvent creates a purchase order approved event
func NewPurchaseOrderApprovedEvent(order *PurchaseOrder) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{newPurchaseOrderEvent(EventTypePurchaseOrderApproved, order)}
}

// PurchaseOrderOrderedEvent is published when an order is placed with the supplier
type PurchaseOrderOrderedEvent struct {
	PurchaseOrderEvent
}

// NewPurchaseOrderOrderedEvent creates a purchase order ordered event
func NewPurchaseOrderOrderedEvent(order *PurchaseOrder) *PurchaseOrderOrderedEvent {
	return &PurchaseOrderOrderedEvent{newPurchaseOrderEvent(EventTypePurchaseOrderOrdered, order)}
}

// PurchaseOrderReceivedEvent is published when every item has been received
type PurchaseOrderReceivedEvent struct {
	PurchaseOrderEvent
}

// NewPurchaseOrderReceivedEvent creates a purchase order received event
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{newPurchaseOrderEvent(EventTypePurchaseOrderReceived, order)}
}

// PurchaseOrderCancelledEvent is published when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	PurchaseOrderEvent
	Reason string `json:"reason,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a purchase order cancelled event
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		PurchaseOrderEvent: newPurchaseOrderEvent(EventTypePurchaseOrderCancelled, order),
		Reason:             reason,
	}
}
