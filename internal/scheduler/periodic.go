package scheduler

import (
	"context"
	"fmt"
	"time"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic registers the recurring follow-up maintenance tasks and enqueues
// them on their configured cron specs.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic enqueue failed", "error", err)
			}
		},
	})

	overdueTask, err := NewOverdueScanTask(OverdueScanPayload{RequestedAt: time.Now()})
	if err != nil {
		return nil, err
	}
	if _, err := sched.Register(cfg.GetOverdueScanSpec(), overdueTask, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register overdue scan: %w", err)
	}

	resyncTask, err := NewCacheResyncTask(CacheResyncPayload{RequestedAt: time.Now()})
	if err != nil {
		return nil, err
	}
	if _, err := sched.Register(cfg.GetCacheResyncSpec(), resyncTask, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register cache resync: %w", err)
	}

	return &Periodic{scheduler: sched, log: log}, nil
}

// Run starts the periodic scheduler and blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}
