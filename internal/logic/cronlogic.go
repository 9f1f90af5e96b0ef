package logic

import (
	"context"
	"errors"
	"math"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "coinlens-api/internal/cache"
	"coinlens-api/internal/collector"
	"coinlens-api/internal/svc"
)

// ErrCollectorBusy is returned when another instance holds the collector lock.
var ErrCollectorBusy = errors.New("collector: run already in progress")

type CronLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCronLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CronLogic {
	return &CronLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Cron runs one collection. With Redis configured, runs across instances are
// serialised through a distributed lock.
func (l *CronLogic) Cron() (*collector.Report, error) {
	if l.svcCtx.Redis != nil {
		lock := redis.NewRedisLock(l.svcCtx.Redis, cachekeys.CollectorLockKey())
		lock.SetExpire(int(math.Ceil(cachekeys.CollectorLockTTL(l.svcCtx.TTL).Seconds())))
		ok, err := lock.AcquireCtx(l.ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCollectorBusy
		}
		defer func() {
			if _, err := lock.ReleaseCtx(context.Background()); err != nil {
				l.Errorf("collector: release lock: %v", err)
			}
		}()
	}
	report := l.svcCtx.Collector.Run(l.ctx)
	return &report, nil
}
