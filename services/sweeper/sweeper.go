package sweeper

import (
	"context"
	"time"

	"retailops-dashboard/services/task"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TypeSweep is the asynq task that resets stale task completions.
const TypeSweep = "task:sweep-completions"

// Scheduler enqueues the daily completion sweep shortly after midnight so
// staleness stays bounded even when nobody opens the task list.
type Scheduler struct {
	client *asynq.Client
	stop   chan struct{}
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client, stop: make(chan struct{})}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.run()
			return nil
		},
		OnStop: func(context.Context) error {
			close(s.stop)
			return nil
		},
	})
}

func (s *Scheduler) run() {
	zap.L().Info("[Scheduler] started completion sweep scheduler")

	for {
		now := time.Now()
		next := nextRunTime(now, 0, 5)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next sweep scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)
		select {
		case <-time.After(sleepDuration):
			s.enqueueSweep()
		case <-s.stop:
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func (s *Scheduler) enqueueSweep() {
	t := asynq.NewTask(TypeSweep, nil, asynq.Queue("low"), asynq.MaxRetry(2))
	if _, err := s.client.Enqueue(t); err != nil {
		zap.L().Error("[Scheduler] failed to enqueue sweep", zap.Error(err))
		return
	}
	zap.L().Info("[Scheduler] completion sweep enqueued")
}

// nextRunTime computes the next occurrence of the given wall-clock time.
func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// RegisterWorker wires the sweep handler onto the worker mux.
func RegisterWorker(mux *asynq.ServeMux, svc *task.Service) {
	mux.HandleFunc(TypeSweep, func(ctx context.Context, _ *asynq.Task) error {
		if err := svc.SweepStaleCompletions(ctx, time.Now()); err != nil {
			return err
		}
		zap.L().Info("completion sweep finished")
		return nil
	})
}

var Module = fx.Module("sweeper.module",
	fx.Provide(NewScheduler),
	fx.Invoke(
		StartScheduler,
		RegisterWorker,
	),
)
