package cache

import (
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates the best available idempotency store: Redis
// when it is reachable, otherwise the in-memory store. The in-memory
// fallback is fine for single-instance deployments; transfer dedup then
// only holds within the process.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	store, err := NewRedisIdempotencyStore(cfg)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory idempotency store",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
		return NewInMemoryIdempotencyStore()
	}
	logger.Info("using redis idempotency store", zap.String("addr", cfg.Addr()))
	return store
}
