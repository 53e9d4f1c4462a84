package inventory

import (
	"context"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/trade"
)

// TransactionalRepositories provides access to repositories that share one
// database transaction
type TransactionalRepositories interface {
	StockLevels() inventory.StockLevelRepository
	Transactions() inventory.TransactionRepository
	PurchaseOrders() trade.PurchaseOrderRepository
}

// TransactionScope executes a function atomically: either every repository
// operation inside fn commits, or none do
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// StaticRepositories is a TransactionalRepositories backed by fixed instances
type StaticRepositories struct {
	StockLevelRepo  inventory.StockLevelRepository
	TransactionRepo inventory.TransactionRepository
	OrderRepo       trade.PurchaseOrderRepository
}

// StockLevels returns the stock level repository
func (r StaticRepositories) StockLevels() inventory.StockLevelRepository {
	return r.StockLevelRepo
}

// Transactions returns the ledger repository
func (r StaticRepositories) Transactions() inventory.TransactionRepository {
	return r.TransactionRepo
}

// PurchaseOrders returns the purchase order repository
func (r StaticRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return r.OrderRepo
}

// NoOpTransactionScope runs the function without transactional guarantees,
// for tests and stores that do not support transactions
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// NewNoOpTransactionScope creates a scope that passes through to fixed repositories
func NewNoOpTransactionScope(repos TransactionalRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{Repos: repos}
}

// Execute runs fn directly against the fixed repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
