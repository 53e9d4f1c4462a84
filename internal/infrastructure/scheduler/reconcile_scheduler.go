package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/config"
)

// ReconcileScheduler periodically sweeps the stock view and reconciles every
// pair against the transaction ledger. Drift is corrected by the sweep itself;
// the scheduler only reports how much it found.
type ReconcileScheduler struct {
	service   *appinv.StockService
	logger    *zap.Logger
	config    config.ReconcileConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileScheduler creates a new reconciliation scheduler
func NewReconcileScheduler(service *appinv.StockService, cfg config.ReconcileConfig, logger *zap.Logger) *ReconcileScheduler {
	return &ReconcileScheduler{
		service: service,
		logger:  logger,
		config:  cfg,
	}
}

// Start launches the background sweep loop. A disabled scheduler starts as a
// no-op so callers do not need to special-case configuration.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("reconciliation scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("page_size", s.config.PageSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ReconcileScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReconcileScheduler) sweep(ctx context.Context) {
	started := time.Now()
	drifted, err := s.service.ReconcileAll(ctx, nil)
	if err != nil {
		s.logger.Error("reconciliation sweep failed", zap.Error(err))
		return
	}

	if len(drifted) > 0 {
		s.logger.Warn("reconciliation sweep corrected drift",
			zap.Int("drifted_pairs", len(drifted)),
			zap.Duration("duration", time.Since(started)),
		)
		return
	}
	s.logger.Debug("reconciliation sweep clean",
		zap.Duration("duration", time.Since(started)),
	)
}
