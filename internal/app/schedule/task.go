package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task runs a job on a fixed interval until its context is cancelled or
// Stop is called. Stop blocks until the loop has fully exited so callers
// can observe completion during shutdown.
type Task struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTask(name string, interval time.Duration, log *slog.Logger, job func(ctx context.Context) error) *Task {
	if log == nil {
		log = slog.Default()
	}
	return &Task{
		name:     name,
		interval: interval,
		job:      job,
		log:      log.With(slog.String("task", name)),
	}
}

// Start launches the loop in its own goroutine. Calling Start on a running
// task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(runCtx, t.done)
}

func (t *Task) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	t.log.Info("task started", slog.Duration("interval", t.interval))
	for {
		select {
		case <-ctx.Done():
			t.log.Info("task stopped")
			return
		case <-ticker.C:
			if err := t.job(ctx); err != nil && ctx.Err() == nil {
				t.log.Error("task run failed", slog.Any("error", err))
			}
		}
	}
}

// Stop cancels the loop and waits for it to finish.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
