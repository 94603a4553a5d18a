// internal/app/system/workers/pushworker.go
package workers

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// PushWorker runs the asynq server that delivers reminders together with
// the periodic task manager that turns weekly registrations into tasks.
type PushWorker struct {
	srv *asynq.Server
	mgr *asynq.PeriodicTaskManager
	mux *asynq.ServeMux
	log *zap.Logger
}

// NewPushWorker wires the worker. provider lists the weekly registrations
// and is re-read every syncInterval; loc is the timezone cron specs are
// evaluated in.
func NewPushWorker(redisOpt asynq.RedisConnOpt, mux *asynq.ServeMux, provider asynq.PeriodicTaskConfigProvider,
	queue string, loc *time.Location, syncInterval time.Duration, logger *zap.Logger) (*PushWorker, error) {

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{queue: 1},
		Logger:      logger.Sugar(),
	})
	mgr, err := asynq.NewPeriodicTaskManager(asynq.PeriodicTaskManagerOpts{
		RedisConnOpt:               redisOpt,
		PeriodicTaskConfigProvider: provider,
		SyncInterval:               syncInterval,
		SchedulerOpts:              &asynq.SchedulerOpts{Location: loc, Logger: logger.Sugar()},
	})
	if err != nil {
		return nil, fmt.Errorf("periodic task manager: %w", err)
	}
	return &PushWorker{srv: srv, mgr: mgr, mux: mux, log: logger}, nil
}

// Start begins processing.
func (w *PushWorker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("start push server: %w", err)
	}
	if err := w.mgr.Start(); err != nil {
		w.srv.Shutdown()
		return fmt.Errorf("start periodic tasks: %w", err)
	}
	w.log.Info("push worker started")
	return nil
}

// Stop shuts both components down and waits for running tasks.
func (w *PushWorker) Stop() {
	w.mgr.Shutdown()
	w.srv.Shutdown()
	w.log.Info("push worker stopped")
}
