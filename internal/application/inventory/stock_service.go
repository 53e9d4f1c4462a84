package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// reconcileSweepPageSize bounds how many levels a sweep loads per batch
const reconcileSweepPageSize = 500

// StockService exposes the stock view: current quantities, thresholds,
// reorder advice and reconciliation against the ledger. All query methods are
// side-effect-free.
type StockService struct {
	levels        inventory.StockLevelRepository
	eventBus      shared.EventPublisher
	logger        *zap.Logger
	sweepPageSize int
}

// NewStockService creates a new StockService
func NewStockService(levels inventory.StockLevelRepository, eventBus shared.EventPublisher, logger *zap.Logger) *StockService {
	return &StockService{
		levels:        levels,
		eventBus:      eventBus,
		logger:        logger,
		sweepPageSize: reconcileSweepPageSize,
	}
}

// SetSweepPageSize overrides the batch size used by ReconcileAll.
// Values below one are ignored.
func (s *StockService) SetSweepPageSize(size int) {
	if size > 0 {
		s.sweepPageSize = size
	}
}

// Get retrieves the stock level for a product/warehouse pair
func (s *StockService) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	return s.levels.FindByPair(ctx, productID, warehouseID)
}

// ListByWarehouse retrieves all stock levels in a warehouse
func (s *StockService) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	return s.levels.FindByWarehouse(ctx, warehouseID, filter)
}

// List retrieves stock levels matching the filter, paginated
func (s *StockService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[inventory.StockLevel], error) {
	levels, err := s.levels.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.levels.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(levels, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SetThresholds updates the replenishment thresholds for a pair, creating the
// stock level row at quantity zero when it does not exist yet
func (s *StockService) SetThresholds(ctx context.Context, productID, warehouseID uuid.UUID, minStock, maxStock, reorderPoint decimal.Decimal) (*inventory.StockLevel, error) {
	if err := inventory.ValidateThresholds(minStock, maxStock, reorderPoint); err != nil {
		return nil, err
	}
	return s.levels.SetThresholds(ctx, productID, warehouseID, minStock, maxStock, reorderPoint)
}

// Reconcile rebuilds one pair's quantity from the ledger sum. Drift is
// corrected, logged and published as an audit event.
func (s *StockService) Reconcile(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ReconciliationResult, error) {
	result, err := s.levels.Reconcile(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if result.HasDrift() {
		s.logger.Warn("stock level drift corrected",
			zap.String("product_id", productID.String()),
			zap.String("warehouse_id", warehouseID.String()),
			zap.String("previous", result.Previous.String()),
			zap.String("corrected", result.Corrected.String()))
		event := inventory.NewReconciliationDriftEvent(result)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish drift event", zap.Error(err))
		}
	}
	return result, nil
}

// ReconcileAll sweeps every stock level, optionally restricted to one
// warehouse, and reconciles each pair. It returns the results that showed
// drift.
func (s *StockService) ReconcileAll(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.ReconciliationResult, error) {
	drifted := make([]inventory.ReconciliationResult, 0)
	filter := shared.DefaultFilter()
	filter.PageSize = s.sweepPageSize

	for page := 1; ; page++ {
		filter.Page = page
		if warehouseID != nil {
			filter.Filters["warehouse_id"] = *warehouseID
		}
		levels, err := s.levels.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, level := range levels {
			result, err := s.Reconcile(ctx, level.ProductID, level.WarehouseID)
			if err != nil {
				return nil, err
			}
			if result.HasDrift() {
				drifted = append(drifted, *result)
			}
		}
		if len(levels) < filter.PageSize {
			break
		}
	}
	return drifted, nil
}

// ListLowStock returns levels at or below their minimum stock
func (s *StockService) ListLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.StockLevel, error) {
	return s.levels.FindLowStock(ctx, warehouseID)
}

// ListReorderRequired returns levels at or below their reorder point together
// with the quantity that would restore the configured maximum
func (s *StockService) ListReorderRequired(ctx context.Context, warehouseID *uuid.UUID) ([]ReorderSuggestion, error) {
	levels, err := s.levels.FindReorderRequired(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]ReorderSuggestion, 0, len(levels))
	for _, level := range levels {
		suggestions = append(suggestions, ReorderSuggestion{
			Level:             level,
			SuggestedQuantity: level.SuggestedOrderQuantity(),
		})
	}
	return suggestions, nil
}
