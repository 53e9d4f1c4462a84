package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/config"
)

type sweepCountingRepository struct {
	level      inventory.StockLevel
	reconciles atomic.Int64
}

func (r *sweepCountingRepository) FindByPair(context.Context, uuid.UUID, uuid.UUID) (*inventory.StockLevel, error) {
	return &r.level, nil
}

func (r *sweepCountingRepository) FindByWarehouse(context.Context, uuid.UUID, shared.Filter) ([]inventory.StockLevel, error) {
	return []inventory.StockLevel{r.level}, nil
}

func (r *sweepCountingRepository) FindAll(context.Context, shared.Filter) ([]inventory.StockLevel, error) {
	return []inventory.StockLevel{r.level}, nil
}

func (r *sweepCountingRepository) FindLowStock(context.Context, *uuid.UUID) ([]inventory.StockLevel, error) {
	return nil, nil
}

func (r *sweepCountingRepository) FindReorderRequired(context.Context, *uuid.UUID) ([]inventory.StockLevel, error) {
	return nil, nil
}

func (r *sweepCountingRepository) ApplyDelta(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*inventory.StockLevel, error) {
	return &r.level, nil
}

func (r *sweepCountingRepository) ApplyDeltaGuarded(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) (*inventory.StockLevel, error) {
	return &r.level, nil
}

func (r *sweepCountingRepository) SetThresholds(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal, decimal.Decimal, decimal.Decimal) (*inventory.StockLevel, error) {
	return &r.level, nil
}

func (r *sweepCountingRepository) Reconcile(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.ReconciliationResult, error) {
	r.reconciles.Add(1)
	return &inventory.ReconciliationResult{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Previous:    r.level.Quantity,
		Corrected:   r.level.Quantity,
	}, nil
}

func (r *sweepCountingRepository) Count(context.Context, shared.Filter) (int64, error) {
	return 1, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...shared.DomainEvent) error { return nil }

func TestReconcileScheduler(t *testing.T) {
	newScheduler := func(cfg config.ReconcileConfig) (*ReconcileScheduler, *sweepCountingRepository) {
		level, err := inventory.NewStockLevel(uuid.New(), uuid.New())
		require.NoError(t, err)
		repo := &sweepCountingRepository{level: *level}
		service := appinv.NewStockService(repo, discardPublisher{}, zap.NewNop())
		return NewReconcileScheduler(service, cfg, zap.NewNop()), repo
	}

	t.Run("sweeps on the configured interval", func(t *testing.T) {
		sched, repo := newScheduler(config.ReconcileConfig{
			Enabled:  true,
			Interval: 5 * time.Millisecond,
			PageSize: 100,
		})

		ctx := context.Background()
		require.NoError(t, sched.Start(ctx))

		assert.Eventually(t, func() bool {
			return repo.reconciles.Load() > 0
		}, time.Second, time.Millisecond)

		require.NoError(t, sched.Stop(ctx))
	})

	t.Run("disabled scheduler never sweeps", func(t *testing.T) {
		sched, repo := newScheduler(config.ReconcileConfig{
			Enabled:  false,
			Interval: time.Millisecond,
		})

		ctx := context.Background()
		require.NoError(t, sched.Start(ctx))
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, sched.Stop(ctx))

		assert.Zero(t, repo.reconciles.Load())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		sched, _ := newScheduler(config.ReconcileConfig{
			Enabled:  true,
			Interval: time.Hour,
		})

		ctx := context.Background()
		require.NoError(t, sched.Start(ctx))
		require.NoError(t, sched.Start(ctx))
		require.NoError(t, sched.Stop(ctx))
		require.NoError(t, sched.Stop(ctx))
	})
}
