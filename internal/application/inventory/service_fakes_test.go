package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// In-memory fakes shared by the service tests in this package.

type pairKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

type fakeStockLevelRepository struct {
	mu     sync.Mutex
	levels map[pairKey]*inventory.StockLevel
	// failDeltaFor injects an ApplyDelta error for one warehouse
	failDeltaFor map[uuid.UUID]error
	// failInboundFor injects an error only for positive deltas, letting
	// tests fail a destination leg or a compensation independently
	failInboundFor map[uuid.UUID]error
	// ledger lets Reconcile sum the sibling transaction fake
	ledger *fakeTransactionRepository
}

func newFakeStockLevelRepository() *fakeStockLevelRepository {
	return &fakeStockLevelRepository{
		levels:         make(map[pairKey]*inventory.StockLevel),
		failDeltaFor:   make(map[uuid.UUID]error),
		failInboundFor: make(map[uuid.UUID]error),
	}
}

func (r *fakeStockLevelRepository) get(productID, warehouseID uuid.UUID) *inventory.StockLevel {
	return r.levels[pairKey{productID, warehouseID}]
}

func (r *fakeStockLevelRepository) FindByPair(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level, ok := r.levels[pairKey{productID, warehouseID}]; ok {
		return level, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockLevelRepository) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockLevel
	for key, level := range r.levels {
		if key.warehouseID == warehouseID {
			result = append(result, *level)
		}
	}
	return result, nil
}

func (r *fakeStockLevelRepository) FindAll(_ context.Context, filter shared.Filter) ([]inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter.Page > 1 {
		return nil, nil
	}
	var result []inventory.StockLevel
	for _, level := range r.levels {
		result = append(result, *level)
	}
	return result, nil
}

func (r *fakeStockLevelRepository) FindLowStock(_ context.Context, _ *uuid.UUID) ([]inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockLevel
	for _, level := range r.levels {
		if level.IsLowStock() {
			result = append(result, *level)
		}
	}
	return result, nil
}

func (r *fakeStockLevelRepository) FindReorderRequired(_ context.Context, _ *uuid.UUID) ([]inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockLevel
	for _, level := range r.levels {
		if level.NeedsReorder() {
			result = append(result, *level)
		}
	}
	return result, nil
}

func (r *fakeStockLevelRepository) ApplyDelta(_ context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failDeltaFor[warehouseID]; ok {
		return nil, err
	}
	if err, ok := r.failInboundFor[warehouseID]; ok && delta.IsPositive() {
		return nil, err
	}
	return r.applyLocked(productID, warehouseID, delta), nil
}

func (r *fakeStockLevelRepository) ApplyDeltaGuarded(_ context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failDeltaFor[warehouseID]; ok {
		return nil, err
	}
	current := decimal.Zero
	if level, ok := r.levels[pairKey{productID, warehouseID}]; ok {
		current = level.Quantity
	}
	if current.Add(delta).IsNegative() {
		return nil, shared.ErrInsufficientStock
	}
	return r.applyLocked(productID, warehouseID, delta), nil
}

func (r *fakeStockLevelRepository) applyLocked(productID, warehouseID uuid.UUID, delta decimal.Decimal) *inventory.StockLevel {
	key := pairKey{productID, warehouseID}
	level, ok := r.levels[key]
	if !ok {
		level, _ = inventory.NewStockLevel(productID, warehouseID)
		r.levels[key] = level
	}
	level.Quantity = level.Quantity.Add(delta)
	return level
}

func (r *fakeStockLevelRepository) SetThresholds(_ context.Context, productID, warehouseID uuid.UUID, minStock, maxStock, reorderPoint decimal.Decimal) (*inventory.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{productID, warehouseID}
	level, ok := r.levels[key]
	if !ok {
		level, _ = inventory.NewStockLevel(productID, warehouseID)
		r.levels[key] = level
	}
	if err := level.SetThresholds(minStock, maxStock, reorderPoint); err != nil {
		return nil, err
	}
	return level, nil
}

func (r *fakeStockLevelRepository) Reconcile(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ReconciliationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{productID, warehouseID}
	level, ok := r.levels[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	sum, err := r.ledger.SumForPair(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	result := &inventory.ReconciliationResult{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Previous:    level.Quantity,
		Corrected:   sum,
	}
	level.Quantity = sum
	return result, nil
}

func (r *fakeStockLevelRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.levels)), nil
}

type fakeTransactionRepository struct {
	mu         sync.Mutex
	entries    []inventory.Transaction
	failCreate error
}

func newFakeTransactionRepository() *fakeTransactionRepository {
	return &fakeTransactionRepository{}
}

func (r *fakeTransactionRepository) Create(_ context.Context, txn *inventory.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.entries = append(r.entries, *txn)
	return nil
}

func (r *fakeTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := range r.entries {
		if r.entries[idx].ID == id {
			return &r.entries[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransactionRepository) FindByPair(_ context.Context, productID, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.Transaction
	for _, entry := range r.entries {
		if entry.ProductID == productID && entry.WarehouseID == warehouseID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeTransactionRepository) FindByReference(_ context.Context, reference string) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.Transaction
	for _, entry := range r.entries {
		if entry.ReferenceNumber == reference {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeTransactionRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]inventory.Transaction(nil), r.entries...), nil
}

func (r *fakeTransactionRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeTransactionRepository) SumForPair(_ context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, entry := range r.entries {
		if entry.ProductID == productID && entry.WarehouseID == warehouseID {
			sum = sum.Add(entry.Quantity)
		}
	}
	return sum, nil
}

type fakeExistenceRepository struct {
	ids map[uuid.UUID]bool
}

func newFakeExistenceRepository(ids ...uuid.UUID) *fakeExistenceRepository {
	known := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &fakeExistenceRepository{ids: known}
}

func (r *fakeExistenceRepository) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return r.ids[id], nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (b *fakeEventBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *fakeEventBus) published(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, event := range b.events {
		if event.EventType() == eventType {
			count++
		}
	}
	return count
}

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *fakeIdempotencyStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
	return nil
}
