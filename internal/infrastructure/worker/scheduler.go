package worker

import (
	"context"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var _ application.Worker = (*Scheduler)(nil)

// Scheduler refreshes every catalog product on a fixed interval. One
// pass runs immediately on Start so a fresh deployment has data before
// the first tick.
type Scheduler struct {
	svc      *application.PricingService
	interval time.Duration
}

func NewScheduler(svc *application.PricingService, interval time.Duration) *Scheduler {
	return &Scheduler{svc: svc, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
	log := logx.L().With(zap.String("worker", "scheduler"))
	log.Info("scheduler.start", zap.Duration("interval", s.interval))

	s.runPass(ctx, log)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler.stop")
			return
		case <-ticker.C:
			s.runPass(ctx, log)
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("scheduler.panic", zap.Any("r", r))
		}
	}()

	start := time.Now()
	outcomes := s.svc.RunAll(ctx, s.svc.Keys())
	ok := 0
	for key, o := range outcomes {
		if o.Err != nil {
			log.Warn("scheduler.key_failed", zap.String("key", key), zap.Error(o.Err))
			continue
		}
		ok++
	}
	log.Info("scheduler.pass_done",
		zap.Int("ok", ok),
		zap.Int("failed", len(outcomes)-ok),
		zap.Duration("took", time.Since(start)),
	)
}
