package persistence

import (
	"context"

	"gorm.io/gorm"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/trade"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db       *gorm.DB
	defaults StockDefaults
}

// NewGormTransactionScope creates a new GormTransactionScope. The stock
// defaults are applied to stock level rows created inside the transaction.
func NewGormTransactionScope(db *gorm.DB, defaults StockDefaults) *GormTransactionScope {
	return &GormTransactionScope{db: db, defaults: defaults}
}

// Execute runs the given function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, defaults: s.defaults})
	})
}

type gormTransactionalRepositories struct {
	tx       *gorm.DB
	defaults StockDefaults
}

// StockLevels returns the stock level repository scoped to the current transaction
func (r *gormTransactionalRepositories) StockLevels() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx, r.defaults)
}

// Transactions returns the ledger repository scoped to the current transaction
func (r *gormTransactionalRepositories) Transactions() inventory.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction
func (r *gormTransactionalRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

var _ appinv.TransactionScope = (*GormTransactionScope)(nil)
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
