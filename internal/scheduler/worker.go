package scheduler

import (
	"context"
	"fmt"

	"sales_crm_backend/internal/leads/followups"
	"sales_crm_backend/internal/leads/overdue"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes follow-up maintenance tasks from the asynq queue.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor *overdue.Processor
	followups *followups.Service
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor *overdue.Processor, svc *followups.Service, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency <= 0 {
		concurrency = 4
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error("task failed", "type", task.Type(), "error", err)
		}),
	})

	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		followups: svc,
		log:       log,
	}
	w.mux.HandleFunc(TaskOverdueScan, w.handleOverdueScan)
	w.mux.HandleFunc(TaskCacheResync, w.handleCacheResync)

	return w, nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleOverdueScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOverdueScanPayload(task)
	if err != nil {
		return fmt.Errorf("parse overdue scan payload: %w", err)
	}

	result, err := w.processor.Process(ctx)
	if err != nil {
		return fmt.Errorf("overdue scan: %w", err)
	}

	w.log.Info("overdue scan finished",
		"requested_at", payload.RequestedAt,
		"scanned", result.Scanned,
		"marked", result.Marked,
		"failed", result.Failed,
		"agents_notified", result.AgentsNotified,
	)
	return nil
}

func (w *Worker) handleCacheResync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCacheResyncPayload(task)
	if err != nil {
		return fmt.Errorf("parse cache resync payload: %w", err)
	}

	result, err := w.followups.SynchronizeAllActive(ctx)
	if err != nil {
		return fmt.Errorf("cache resync: %w", err)
	}

	w.log.Info("cache resync finished",
		"requested_at", payload.RequestedAt,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"with_pending", result.WithPending,
	)
	return nil
}
