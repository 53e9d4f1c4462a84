package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LedgerService is the single write path into the transaction ledger. Every
// stock movement appends exactly one immutable entry and applies the same
// delta to the stock view inside one transaction scope.
type LedgerService struct {
	scope        TransactionScope
	transactions inventory.TransactionRepository
	products     ProductDirectory
	warehouses   WarehouseDirectory
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	transactions inventory.TransactionRepository,
	products ProductDirectory,
	warehouses WarehouseDirectory,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:        scope,
		transactions: transactions,
		products:     products,
		warehouses:   warehouses,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Record appends a generic ledger entry. Transfer entries are refused here;
// they are written in pairs by the TransferService.
func (s *LedgerService) Record(ctx context.Context, req RecordEntryRequest) (*RecordEntryResult, error) {
	if req.Type == inventory.TransactionTypeTransfer {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"Transfer entries are written by the transfer coordinator")
	}
	return s.record(ctx, req)
}

// Adjust corrects a pair's quantity from an observed physical count. The
// ledger receives a single adjustment entry with delta = new - old.
func (s *LedgerService) Adjust(ctx context.Context, req AdjustRequest) (*RecordEntryResult, error) {
	if req.NewQuantity.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}
	delta := req.NewQuantity.Sub(req.OldQuantity)
	if delta.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}
	return s.record(ctx, RecordEntryRequest{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Type:        inventory.TransactionTypeAdjustment,
		Quantity:    delta,
		Notes:       req.Reason,
		ActorID:     req.ActorID,
	})
}

// ReceivePurchase books goods received against a purchase order
func (s *LedgerService) ReceivePurchase(ctx context.Context, productID, warehouseID uuid.UUID, quantity, unitCost decimal.Decimal, poRef string, actorID *uuid.UUID) (*RecordEntryResult, error) {
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	return s.record(ctx, RecordEntryRequest{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		Type:            inventory.TransactionTypePurchase,
		Quantity:        quantity,
		UnitCost:        unitCost,
		ReferenceNumber: poRef,
		ActorID:         actorID,
	})
}

// RecordSale removes sold goods from stock
func (s *LedgerService) RecordSale(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal, saleRef string, actorID *uuid.UUID) (*RecordEntryResult, error) {
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	return s.record(ctx, RecordEntryRequest{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		Type:            inventory.TransactionTypeSale,
		Quantity:        quantity.Neg(),
		ReferenceNumber: saleRef,
		ActorID:         actorID,
	})
}

// RecordReturn books a return; customer returns add stock, returns to the
// supplier remove it
func (s *LedgerService) RecordReturn(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal, direction ReturnDirection, ref string, actorID *uuid.UUID) (*RecordEntryResult, error) {
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid return direction: "+string(direction))
	}
	delta := quantity
	if direction == ReturnToSupplier {
		delta = quantity.Neg()
	}
	return s.record(ctx, RecordEntryRequest{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		Type:            inventory.TransactionTypeReturn,
		Quantity:        delta,
		ReferenceNumber: ref,
		ActorID:         actorID,
	})
}

// RecordWaste removes spoiled or damaged goods from stock
func (s *LedgerService) RecordWaste(ctx context.Context, productID, warehouseID uuid.UUID, quantity decimal.Decimal, reason string, actorID *uuid.UUID) (*RecordEntryResult, error) {
	if !quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	return s.record(ctx, RecordEntryRequest{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        inventory.TransactionTypeWaste,
		Quantity:    quantity.Neg(),
		Notes:       reason,
		ActorID:     actorID,
	})
}

// GetEntry retrieves a single ledger entry
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	return s.transactions.FindByID(ctx, id)
}

// ListEntries retrieves ledger entries matching the filter, paginated
func (s *LedgerService) ListEntries(ctx context.Context, filter shared.Filter) (*shared.Paginated[inventory.Transaction], error) {
	entries, err := s.transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactions.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListByReference retrieves all entries sharing a reference number
func (s *LedgerService) ListByReference(ctx context.Context, reference string) ([]inventory.Transaction, error) {
	return s.transactions.FindByReference(ctx, reference)
}

func (s *LedgerService) record(ctx context.Context, req RecordEntryRequest) (*RecordEntryResult, error) {
	if err := s.checkReferences(ctx, req.ProductID, req.WarehouseID); err != nil {
		return nil, err
	}

	txn, err := inventory.NewTransaction(req.ProductID, req.WarehouseID, req.Type, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !req.UnitCost.IsZero() {
		txn.WithUnitCost(req.UnitCost)
	}
	if req.ReferenceNumber != "" {
		txn.WithReference(req.ReferenceNumber)
	}
	if req.Notes != "" {
		txn.WithNotes(req.Notes)
	}
	if req.ActorID != nil {
		txn.WithActor(*req.ActorID)
	}
	if req.OccurredAt != nil {
		txn.WithOccurredAt(*req.OccurredAt)
	}

	var level *inventory.StockLevel
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var applyErr error
		if txn.IsOutbound() {
			level, applyErr = repos.StockLevels().ApplyDeltaGuarded(ctx, txn.ProductID, txn.WarehouseID, txn.Quantity)
		} else {
			level, applyErr = repos.StockLevels().ApplyDelta(ctx, txn.ProductID, txn.WarehouseID, txn.Quantity)
		}
		if applyErr != nil {
			return applyErr
		}
		return repos.Transactions().Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.publishMovementEvents(ctx, txn, level)
	return &RecordEntryResult{Entry: txn, Level: level}, nil
}

func (s *LedgerService) checkReferences(ctx context.Context, productID, warehouseID uuid.UUID) error {
	exists, err := s.products.ExistsByID(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	exists, err = s.warehouses.ExistsByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Warehouse not found")
	}
	return nil
}

func (s *LedgerService) publishMovementEvents(ctx context.Context, txn *inventory.Transaction, level *inventory.StockLevel) {
	events := []shared.DomainEvent{inventory.NewTransactionRecordedEvent(txn)}
	if level != nil && level.NeedsReorder() {
		events = append(events, inventory.NewStockBelowReorderPointEvent(level))
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish ledger events",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}
}
