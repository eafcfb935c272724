package service

import (
	"context"
	"log/slog"
	"sync"
)

// TaskRunner runs named tasks detached from the request that started
// them. Each task gets a fresh background context so it survives the
// request's cancellation; failures are logged, never propagated.
type TaskRunner struct {
	wg sync.WaitGroup
}

// NewTaskRunner creates a task runner.
func NewTaskRunner() *TaskRunner {
	return &TaskRunner{}
}

// Go starts fn in the background.
func (r *TaskRunner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		bgCtx := context.Background()
		if err := fn(bgCtx); err != nil {
			slog.Error("background task failed", "task", name, "error", err)
			return
		}
		slog.Info("background task finished", "task", name)
	}()
}

// Wait blocks until all started tasks have finished. Used on shutdown
// and in tests.
func (r *TaskRunner) Wait() {
	r.wg.Wait()
}
