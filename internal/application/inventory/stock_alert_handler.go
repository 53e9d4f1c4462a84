package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockAlertHandler turns inventory audit events into structured log entries:
// reorder alerts, reconciliation drift and transfer compensations
type StockAlertHandler struct {
	logger *zap.Logger
}

// NewStockAlertHandler creates a new StockAlertHandler
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	return &StockAlertHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *StockAlertHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockBelowReorder,
		inventory.EventTypeReconciliationDrift,
		inventory.EventTypeTransferCompensated,
	}
}

// Handle logs the audit event
func (h *StockAlertHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockBelowReorderPointEvent:
		h.logger.Warn("stock below reorder point",
			zap.String("product_id", e.ProductID.String()),
			zap.String("warehouse_id", e.WarehouseID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("reorder_point", e.ReorderPoint.String()))
	case *inventory.ReconciliationDriftEvent:
		h.logger.Warn("reconciliation drift detected",
			zap.String("product_id", e.ProductID.String()),
			zap.String("warehouse_id", e.WarehouseID.String()),
			zap.String("previous", e.Previous.String()),
			zap.String("corrected", e.Corrected.String()),
			zap.String("drift", e.Drift.String()))
	case *inventory.TransferCompensatedEvent:
		h.logger.Warn("transfer compensated",
			zap.String("reference", e.ReferenceNumber),
			zap.String("product_id", e.ProductID.String()),
			zap.String("source_warehouse_id", e.SourceWarehouse.String()),
			zap.String("dest_warehouse_id", e.DestWarehouse.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("reason", e.Reason))
	default:
		h.logger.Debug("unhandled inventory event", zap.String("type", event.EventType()))
	}
	return nil
}
