package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockDefaults holds the thresholds applied to stock level rows created
// lazily on first movement
type StockDefaults struct {
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	ReorderPoint decimal.Decimal
}

// GormStockLevelRepository implements StockLevelRepository using GORM.
// Quantity mutations are single UPDATE or upsert statements so concurrent
// movements on the same pair serialize on the row without a read first.
type GormStockLevelRepository struct {
	db       *gorm.DB
	defaults StockDefaults
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB, defaults StockDefaults) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db, defaults: defaults}
}

// FindByPair finds the stock level for a product/warehouse pair
func (r *GormStockLevelRepository) FindByPair(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLevel, error) {
	var level inventory.StockLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByWarehouse finds all stock levels in a warehouse
func (r *GormStockLevelRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindAll finds stock levels matching the filter
func (r *GormStockLevelRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockLevel{}), filter)
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindLowStock finds levels at or below their minimum stock
func (r *GormStockLevelRepository) FindLowStock(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("min_stock > 0 AND quantity <= min_stock")
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	if err := query.Order("quantity ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindReorderRequired finds levels at or below their reorder point
func (r *GormStockLevelRepository) FindReorderRequired(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	query := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("reorder_point > 0 AND quantity <= reorder_point")
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	if err := query.Order("quantity ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// ApplyDelta atomically adds the signed delta to the pair's quantity. A
// missing row is created with the delta as its quantity, so the first
// movement for a pair establishes the row. Uses an upsert so that two
// concurrent first movements cannot both insert.
func (r *GormStockLevelRepository) ApplyDelta(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockLevel, error) {
	level, err := inventory.NewStockLevel(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	level.Quantity = delta
	level.MinStock = r.defaults.MinStock
	level.MaxStock = r.defaults.MaxStock
	level.ReorderPoint = r.defaults.ReorderPoint

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("stock_levels.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(level).Error; err != nil {
		return nil, err
	}

	return r.FindByPair(ctx, productID, warehouseID)
}

// ApplyDeltaGuarded behaves like ApplyDelta but refuses to let the quantity
// go negative. The guard lives in the UPDATE's WHERE clause, so the check
// and the decrement are one atomic statement.
func (r *GormStockLevelRepository) ApplyDeltaGuarded(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockLevel, error) {
	result := r.db.WithContext(ctx).Model(&inventory.StockLevel{}).
		Where("product_id = ? AND warehouse_id = ? AND quantity + ? >= 0", productID, warehouseID, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if delta.IsNegative() {
			// either the row is missing (zero stock) or the decrement
			// would go below zero
			return nil, shared.ErrInsufficientStock
		}
		return r.ApplyDelta(ctx, productID, warehouseID, delta)
	}

	return r.FindByPair(ctx, productID, warehouseID)
}

// SetThresholds updates the replenishment thresholds for a pair, creating
// the row at quantity zero if it does not exist
func (r *GormStockLevelRepository) SetThresholds(ctx context.Context, productID, warehouseID uuid.UUID, minStock, maxStock, reorderPoint decimal.Decimal) (*inventory.StockLevel, error) {
	level, err := inventory.NewStockLevel(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := level.SetThresholds(minStock, maxStock, reorderPoint); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"min_stock":     minStock,
				"max_stock":     maxStock,
				"reorder_point": reorderPoint,
				"updated_at":    time.Now(),
			}),
		}).
		Create(level).Error; err != nil {
		return nil, err
	}

	return r.FindByPair(ctx, productID, warehouseID)
}

// Reconcile rebuilds the pair's quantity from the ledger sum. The prior read
// takes the row lock, so concurrent movements on the pair queue behind the
// reconcile and the SUM sees a stable ledger. Without the lock a movement
// committing mid-reconcile could be dropped from the rebuilt quantity.
func (r *GormStockLevelRepository) Reconcile(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.ReconciliationResult, error) {
	var result inventory.ReconciliationResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var prior inventory.StockLevel
		if err := query.First(&prior).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&inventory.StockLevel{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
			Updates(map[string]interface{}{
				"quantity": gorm.Expr(
					"(SELECT COALESCE(SUM(quantity), 0) FROM inventory_transactions WHERE product_id = ? AND warehouse_id = ?)",
					productID, warehouseID),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		var corrected inventory.StockLevel
		if err := tx.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
			First(&corrected).Error; err != nil {
			return err
		}

		result = inventory.ReconciliationResult{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Previous:    prior.Quantity,
			Corrected:   corrected.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Count counts stock levels matching the filter
func (r *GormStockLevelRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockLevel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockLevelRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

func (r *GormStockLevelRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			}
		}
	}
	return query
}

var _ inventory.StockLevelRepository = (*GormStockLevelRepository)(nil)
