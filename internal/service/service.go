package service

import (
	"go.uber.org/zap"

	"shiftswap/config"
	"shiftswap/internal/repository"
	"shiftswap/internal/swap"
	"shiftswap/pkg/jwt"
	"shiftswap/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth   AuthService
	Swap   SwapService
	Export ExportService
}

// NewService 创建 Service 聚合
//
// rdb 可为空（单实例部署）：此时不启用 Token 黑名单与跨实例处理锁。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store *swap.Store,
	recorder swap.Recorder,
	logger *zap.Logger,
) *Service {
	var (
		blacklist TokenBlacklist
		locker    Locker
	)
	if rdb != nil {
		blacklist = rdb
		locker = rdb
	}

	coord := swap.NewCoordinator(store, repository.NewSwapPersistence(repo.SwapRequest), swap.Options{
		Policy:         swap.Policy{AdminOverride: cfg.Swap.AdminOverride},
		Guard:          swap.ChainGuards(swap.NewLocalGuard(), NewRedisGuard(locker, cfg.Swap.LockTTL, logger)),
		PersistTimeout: cfg.Swap.PersistTimeout,
		Recorder:       recorder,
		Logger:         logger.Named("swap"),
	})

	return &Service{
		Auth:   NewAuthService(repo, jwtMgr, blacklist, logger),
		Swap:   NewSwapService(cfg, repo, coord, logger),
		Export: NewExportService(store, logger),
	}
}
