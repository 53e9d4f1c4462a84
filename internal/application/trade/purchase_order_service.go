package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
)

// SupplierDirectory is the slice of the partner directory this service
// depends on
type SupplierDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// PurchaseOrderService governs the supplier order lifecycle and bridges
// receipts into the inventory ledger
type PurchaseOrderService struct {
	scope      appinv.TransactionScope
	orders     trade.PurchaseOrderRepository
	suppliers  SupplierDirectory
	warehouses appinv.WarehouseDirectory
	products   appinv.ProductDirectory
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	scope appinv.TransactionScope,
	orders trade.PurchaseOrderRepository,
	suppliers SupplierDirectory,
	warehouses appinv.WarehouseDirectory,
	products appinv.ProductDirectory,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:      scope,
		orders:     orders,
		suppliers:  suppliers,
		warehouses: warehouses,
		products:   products,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Create creates a purchase order in pending state with a generated order
// number and a total derived from its items
func (s *PurchaseOrderService) Create(ctx context.Context, req CreateOrderRequest) (*trade.PurchaseOrder, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order requires at least one item")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	order, err := trade.NewPurchaseOrder(orderNumber, req.SupplierID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedDate != nil {
		order.WithExpectedDate(*req.ExpectedDate)
	}
	if req.Notes != "" {
		order.WithNotes(req.Notes)
	}
	for _, item := range req.Items {
		if err := order.AddItem(item.ProductID, item.Quantity, item.UnitCost); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)
	return order, nil
}

// Approve moves a pending order to approved
func (s *PurchaseOrderService) Approve(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.Approve()
	})
}

// MarkOrdered marks an approved order as placed with the supplier
func (s *PurchaseOrderService) MarkOrdered(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.MarkOrdered()
	})
}

// Cancel terminates an order from any non-terminal state
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*trade.PurchaseOrder, error) {
	return s.mutate(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.Cancel(reason)
	})
}

// ReceiveItems records cumulative receipts against an ordered purchase order.
// For every item whose reported total exceeds what was previously recorded, a
// purchase entry for the delta only is appended to the ledger and the stock
// view is updated; the order, its items, the ledger entries and the stock
// deltas commit in one transaction, with the order row locked so concurrent
// receipts against the same order are serialized. When every item is fully
// received the order completes automatically.
func (s *PurchaseOrderService) ReceiveItems(ctx context.Context, orderID uuid.UUID, receipts []ReceiptInput, actorID *uuid.UUID) (*trade.PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No receipts provided")
	}

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		for _, receipt := range receipts {
			delta, err := order.ApplyReceipt(receipt.ItemID, receipt.ReceivedQuantity)
			if err != nil {
				return err
			}
			if !delta.IsPositive() {
				continue
			}
			item := order.FindItem(receipt.ItemID)
			txn, err := inventory.NewTransaction(item.ProductID, order.WarehouseID,
				inventory.TransactionTypePurchase, delta)
			if err != nil {
				return err
			}
			txn.WithUnitCost(item.UnitCost).WithReference(order.OrderNumber)
			if actorID != nil {
				txn.WithActor(*actorID)
			}
			if _, err := repos.StockLevels().ApplyDelta(ctx, item.ProductID, order.WarehouseID, delta); err != nil {
				return err
			}
			if err := repos.Transactions().Create(ctx, txn); err != nil {
				return err
			}
		}

		if order.IsFullyReceived() {
			if err := order.MarkReceived(); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	return order, nil
}

// Get retrieves an order with its items
func (s *PurchaseOrderService) Get(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.orders.FindByID(ctx, orderID)
}

// GetByNumber retrieves an order by its business key
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	return s.orders.FindByOrderNumber(ctx, orderNumber)
}

// List retrieves orders matching the filter, paginated
func (s *PurchaseOrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[trade.PurchaseOrder], error) {
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

func (s *PurchaseOrderService) mutate(ctx context.Context, orderID uuid.UUID, fn func(order *trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)
	return order, nil
}

func (s *PurchaseOrderService) checkReferences(ctx context.Context, req CreateOrderRequest) error {
	exists, err := s.suppliers.ExistsByID(ctx, req.SupplierID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}
	exists, err = s.warehouses.ExistsByID(ctx, req.WarehouseID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Warehouse not found")
	}
	for _, item := range req.Items {
		exists, err = s.products.ExistsByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewDomainError("NOT_FOUND", "Product not found")
		}
	}
	return nil
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *trade.PurchaseOrder) {
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
	order.ClearDomainEvents()
}
