// Package scheduler drains the pending-work queue: it claims tasks from the
// head of the queue and runs their actions on a bounded set of goroutines.
// A failed task is logged and dropped; nothing is retried.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"symbol-indexer/internal/fileid"
	"symbol-indexer/internal/taskqueue"
)

// Stats summarizes one Run.
type Stats struct {
	Executed int64
	Failed   int64
}

type Scheduler struct {
	queue        *taskqueue.Guarded
	files        *fileid.Cache
	storage      taskqueue.SymbolStorage
	newCollector func() taskqueue.SymbolsCollector
	workers      int
	metrics      *Metrics
}

func New(
	queue *taskqueue.Guarded,
	files *fileid.Cache,
	storage taskqueue.SymbolStorage,
	newCollector func() taskqueue.SymbolsCollector,
	workers int,
	metrics *Metrics,
) *Scheduler {
	return &Scheduler{
		queue:        queue,
		files:        files,
		storage:      storage,
		newCollector: newCollector,
		workers:      max(workers, 1),
		metrics:      metrics,
	}
}

// Run executes queued tasks until the queue is empty or ctx is done. Tasks
// queued while Run is active are picked up too. It returns ctx's error if
// it stopped early.
//
// At most one task per (file, configuration) runs at a time. A task claimed
// while an older one for its key is still running is held and started once
// that run returns, so the newest version always finishes last. Holding a
// second task for the same key replaces the first, as the queue would.
func (s *Scheduler) Run(ctx context.Context) (Stats, error) {
	var executed, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.workers)

	var mu sync.Mutex
	running := make(map[taskqueue.TaskKey]struct{})
	held := make(map[taskqueue.TaskKey]taskqueue.Task)

	for ctx.Err() == nil {
		claimed := s.queue.TakeFront(1)
		s.observePending()
		if len(claimed) == 0 {
			// drain in-flight tasks, then re-check for work queued meanwhile
			_ = g.Wait()
			if s.queue.Len() == 0 {
				break
			}
			continue
		}
		task := claimed[0]
		key := task.Key()

		mu.Lock()
		if _, busy := running[key]; busy {
			held[key] = task
			mu.Unlock()
			continue
		}
		running[key] = struct{}{}
		mu.Unlock()

		g.Go(func() error {
			for {
				if err := s.execute(ctx, task); err != nil {
					failed.Add(1)
				}
				executed.Add(1)

				mu.Lock()
				next, ok := held[key]
				delete(held, key)
				if !ok || ctx.Err() != nil {
					delete(running, key)
					mu.Unlock()
					return nil
				}
				mu.Unlock()
				task = next
			}
		})
	}
	_ = g.Wait()
	s.observePending()

	stats := Stats{Executed: executed.Load(), Failed: failed.Load()}
	slog.InfoContext(ctx, "scheduler finished", "executed", stats.Executed, "failed", stats.Failed)
	return stats, ctx.Err()
}

func (s *Scheduler) execute(ctx context.Context, task taskqueue.Task) (err error) {
	config, _ := s.queue.ConfigName(task.ConfigID)
	path, _ := s.files.Path(task.FileID)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("indexing task panicked: %v", r)
		}
		result := "ok"
		if err != nil {
			result = "failed"
			slog.ErrorContext(ctx, "indexing task failed", "path", path, "config", config, "error", err)
		}
		if s.metrics != nil {
			s.metrics.Executed.WithLabelValues(config, result).Inc()
			s.metrics.Duration.Observe(time.Since(start).Seconds())
		}
	}()
	if task.Action == nil {
		return nil
	}
	return task.Action(ctx, s.newCollector(), s.storage)
}

func (s *Scheduler) observePending() {
	if s.metrics != nil {
		s.metrics.Pending.Set(float64(s.queue.Len()))
	}
}
