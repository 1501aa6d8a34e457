package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shiftswap/internal/swap"
)

// Locker 分布式锁（由 Redis 实现）
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// redisGuard 跨实例的处理锁：同一申请同一时刻只允许一个实例提交
type redisGuard struct {
	locker Locker
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGuard 创建基于 Redis 的 Guard；locker 为空时返回 nil
func NewRedisGuard(locker Locker, ttl time.Duration, logger *zap.Logger) swap.Guard {
	if locker == nil {
		return nil
	}
	return &redisGuard{locker: locker, ttl: ttl, logger: logger}
}

func lockKey(id string) string { return "swap_request:" + id }

func (g *redisGuard) Acquire(ctx context.Context, id string) (func(), error) {
	token, err := g.locker.AcquireLock(ctx, lockKey(id), g.ttl)
	if err != nil {
		// Redis 不可用时降级为仅进程内互斥，数据库条件更新兜底
		g.logger.Warn("获取换班申请处理锁失败，降级为本地锁", zap.String("swap_request_id", id), zap.Error(err))
		return func() {}, nil
	}
	if token == "" {
		return nil, swap.ErrInFlight
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := g.locker.ReleaseLock(rctx, lockKey(id), token); err != nil {
			g.logger.Warn("释放换班申请处理锁失败", zap.String("swap_request_id", id), zap.Error(err))
		}
	}, nil
}
