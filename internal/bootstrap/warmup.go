package bootstrap

import (
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/config"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/service"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/warmup"
)

// StartWarmup schedules the cache warm-up. It returns nil when no schedule
// is configured, when there is no row cache to warm, or when the schedule
// is invalid.
func StartWarmup(cfg config.WarmupConfig, svc *service.GraphService, invalidator warmup.Invalidator, timeout time.Duration, log *logger.Logger) *warmup.Scheduler {
	log = logger.OrNop(log)
	if cfg.Cron == "" {
		return nil
	}
	if invalidator == nil {
		log.Warn("warm-up skipped: row cache disabled", "spec", cfg.Cron)
		return nil
	}

	sched := warmup.NewScheduler(svc, invalidator, timeout, log)
	if err := sched.Start(cfg.Cron); err != nil {
		log.Error("warm-up disabled", "error", err)
		return nil
	}
	return sched
}
