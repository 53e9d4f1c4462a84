package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// The ledger is append-only, so the repository exposes no update or delete.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a new ledger entry
func (r *GormTransactionRepository) Create(ctx context.Context, txn *inventory.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByID finds a ledger entry by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	var txn inventory.Transaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindByPair finds entries for a product/warehouse pair, newest first
func (r *GormTransactionRepository) FindByPair(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Transaction{}).
			Where("product_id = ? AND warehouse_id = ?", productID, warehouseID),
		filter,
	)
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindByReference finds all entries sharing a reference number, in the order
// they were written
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	if err := r.db.WithContext(ctx).
		Where("reference_number = ?", reference).
		Order("occurred_at ASC, created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindAll finds entries matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Transaction{}), filter)
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// Count counts entries matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.Transaction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumForPair returns the signed sum of all deltas for a pair
func (r *GormTransactionRepository) SumForPair(ctx context.Context, productID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.Transaction{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("occurred_at DESC")
	}

	return query
}

func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "reference":
			query = query.Where("reference_number = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		case "date_from":
			query = query.Where("occurred_at >= ?", value)
		case "date_to":
			query = query.Where("occurred_at <= ?", value)
		}
	}
	return query
}

var _ inventory.TransactionRepository = (*GormTransactionRepository)(nil)
