package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

const (
	// transferInLegAttempts bounds retries of the destination leg before
	// the transfer is compensated
	transferInLegAttempts = 3
	// transferIdempotencyTTL is how long a redriven transfer command is
	// recognized as a duplicate
	transferIdempotencyTTL = 24 * time.Hour

	transferRollbackNote = "transfer rollback"
)

// TransferService moves stock between warehouses as one logical operation.
// The ledger representation is two entries sharing a reference number with
// additive-inverse quantities. Each leg commits in its own transaction; when
// the destination leg cannot be written after the source leg succeeded, a
// compensating adjustment restores the source instead of deleting ledger
// history.
type TransferService struct {
	scope        TransactionScope
	transactions inventory.TransactionRepository
	products     ProductDirectory
	warehouses   WarehouseDirectory
	idempotency  shared.IdempotencyStore
	eventBus     shared.EventPublisher
	logger       *zap.Logger
	dedupTTL     time.Duration
}

// NewTransferService creates a new TransferService
func NewTransferService(
	scope TransactionScope,
	transactions inventory.TransactionRepository,
	products ProductDirectory,
	warehouses WarehouseDirectory,
	idempotency shared.IdempotencyStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		scope:        scope,
		transactions: transactions,
		products:     products,
		warehouses:   warehouses,
		idempotency:  idempotency,
		eventBus:     eventBus,
		logger:       logger,
		dedupTTL:     transferIdempotencyTTL,
	}
}

// SetDedupTTL overrides how long processed idempotency keys are remembered.
// Values below one second are ignored.
func (s *TransferService) SetDedupTTL(ttl time.Duration) {
	if ttl >= time.Second {
		s.dedupTTL = ttl
	}
}

// Transfer moves a quantity of one product from the source to the destination
// warehouse. On success both ledger legs are committed. When the destination
// leg fails, the result reports Compensated=true and the source has been
// restored by a compensating adjustment sharing the transfer's reference.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.ErrInvalidQuantity
	}
	if req.SourceWarehouse == req.DestWarehouse {
		return nil, shared.NewDomainError("INVALID_INPUT",
			"Source and destination warehouses must differ")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}
	var dedupKey string
	if req.IdempotencyKey != "" {
		dedupKey = "transfer:" + req.IdempotencyKey
		fresh, err := s.idempotency.MarkProcessed(ctx, dedupKey, s.dedupTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("ALREADY_EXISTS",
				"A transfer with this idempotency key was already processed")
		}
	}

	reference := "TRF-" + uuid.NewString()

	outEntry, sourceLevel, err := s.writeLeg(ctx, req, req.SourceWarehouse, req.Quantity.Neg(), reference)
	if err != nil {
		// nothing was committed, so the key must not block a redrive
		s.releaseKey(ctx, dedupKey)
		return nil, err
	}

	var inEntry *inventory.Transaction
	var destLevel *inventory.StockLevel
	for attempt := 1; attempt <= transferInLegAttempts; attempt++ {
		inEntry, destLevel, err = s.writeLeg(ctx, req, req.DestWarehouse, req.Quantity, reference)
		if err == nil {
			break
		}
		s.logger.Warn("transfer destination leg failed",
			zap.String("reference", reference),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	if err != nil {
		return s.compensate(ctx, req, reference, err)
	}

	s.publishTransferEvents(ctx, outEntry, inEntry, sourceLevel)

	return &TransferResult{
		ReferenceNumber: reference,
		OutEntry:        outEntry,
		InEntry:         inEntry,
		SourceLevel:     sourceLevel,
		DestLevel:       destLevel,
	}, nil
}

// FindByReference returns all ledger entries of a transfer, both legs and any
// compensating adjustment
func (s *TransferService) FindByReference(ctx context.Context, reference string) ([]inventory.Transaction, error) {
	entries, err := s.transactions.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Transfer not found")
	}
	return entries, nil
}

// writeLeg commits one transfer leg atomically: the stock delta plus its
// ledger entry. Outbound legs are guarded so the source can never go negative.
func (s *TransferService) writeLeg(ctx context.Context, req TransferRequest, warehouseID uuid.UUID, delta decimal.Decimal, reference string) (*inventory.Transaction, *inventory.StockLevel, error) {
	txn, err := inventory.NewTransaction(req.ProductID, warehouseID, inventory.TransactionTypeTransfer, delta)
	if err != nil {
		return nil, nil, err
	}
	txn.WithReference(reference)
	if req.Notes != "" {
		txn.WithNotes(req.Notes)
	}
	if req.ActorID != nil {
		txn.WithActor(*req.ActorID)
	}

	var level *inventory.StockLevel
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var applyErr error
		if delta.IsNegative() {
			level, applyErr = repos.StockLevels().ApplyDeltaGuarded(ctx, req.ProductID, warehouseID, delta)
		} else {
			level, applyErr = repos.StockLevels().ApplyDelta(ctx, req.ProductID, warehouseID, delta)
		}
		if applyErr != nil {
			return applyErr
		}
		return repos.Transactions().Create(ctx, txn)
	})
	if err != nil {
		return nil, nil, err
	}
	return txn, level, nil
}

// compensate restores the source warehouse after a failed destination leg.
// The rollback is itself a ledger entry; if even that cannot be written the
// transfer is reported corrupted for manual reconciliation.
func (s *TransferService) compensate(ctx context.Context, req TransferRequest, reference string, cause error) (*TransferResult, error) {
	comp, err := inventory.NewTransaction(req.ProductID, req.SourceWarehouse, inventory.TransactionTypeAdjustment, req.Quantity)
	if err != nil {
		return nil, shared.ErrTransferCorrupted
	}
	comp.WithReference(reference).WithNotes(transferRollbackNote)
	if req.ActorID != nil {
		comp.WithActor(*req.ActorID)
	}

	var sourceLevel *inventory.StockLevel
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var applyErr error
		sourceLevel, applyErr = repos.StockLevels().ApplyDelta(ctx, req.ProductID, req.SourceWarehouse, req.Quantity)
		if applyErr != nil {
			return applyErr
		}
		return repos.Transactions().Create(ctx, comp)
	})
	if err != nil {
		s.logger.Error("transfer compensation failed",
			zap.String("reference", reference),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return nil, shared.ErrTransferCorrupted
	}

	s.logger.Warn("transfer compensated",
		zap.String("reference", reference),
		zap.String("product_id", req.ProductID.String()),
		zap.NamedError("cause", cause))

	event := inventory.NewTransferCompensatedEvent(req.ProductID, req.SourceWarehouse, req.DestWarehouse,
		req.Quantity, reference, cause.Error())
	if pubErr := s.eventBus.Publish(ctx, event); pubErr != nil {
		s.logger.Warn("failed to publish compensation event", zap.Error(pubErr))
	}

	return &TransferResult{
		ReferenceNumber: reference,
		SourceLevel:     sourceLevel,
		Compensated:     true,
		Warning:         "destination leg failed, source restored by compensating entry: " + cause.Error(),
	}, nil
}

// releaseKey frees an idempotency key after a transfer failed before writing
// anything. Keys stay consumed once the source leg committed: a redrive after
// that point would deduct the source a second time.
func (s *TransferService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idempotency.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to release idempotency key",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *TransferService) checkReferences(ctx context.Context, req TransferRequest) error {
	exists, err := s.products.ExistsByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	for _, warehouseID := range []uuid.UUID{req.SourceWarehouse, req.DestWarehouse} {
		exists, err = s.warehouses.ExistsByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewDomainError("NOT_FOUND", "Warehouse not found")
		}
	}
	return nil
}

func (s *TransferService) publishTransferEvents(ctx context.Context, outEntry, inEntry *inventory.Transaction, sourceLevel *inventory.StockLevel) {
	events := []shared.DomainEvent{
		inventory.NewTransactionRecordedEvent(outEntry),
		inventory.NewTransactionRecordedEvent(inEntry),
	}
	if sourceLevel != nil && sourceLevel.NeedsReorder() {
		events = append(events, inventory.NewStockBelowReorderPointEvent(sourceLevel))
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish transfer events",
			zap.String("reference", outEntry.ReferenceNumber),
			zap.Error(err))
	}
}
