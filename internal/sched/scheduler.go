// Package sched provides repeating timers with per-job stop handles.
package sched

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one tick's worth of work. It receives the scheduler's context and
// is expected to contain its own failures.
type Job func(ctx context.Context)

// Handle controls a single running job.
type Handle struct {
	name string
	stop chan struct{}
	once sync.Once
}

// Stop halts the job's timer. Safe to call more than once. A tick already
// in progress runs to completion.
func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// Scheduler owns repeating timers. Ticks of one job are serialized: the job
// runs on the timer goroutine, so a tick that overruns its interval delays
// the next tick instead of overlapping it. Different jobs are independent.
type Scheduler struct {
	log *zap.Logger

	mu      sync.Mutex
	handles []*Handle
	wg      sync.WaitGroup
}

// New creates a Scheduler logging through log.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{log: log}
}

// Every runs job each interval until the handle is stopped, StopAll is
// called, or ctx is cancelled. The first run happens one interval after
// registration, not immediately.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, job Job) *Handle {
	h := &Handle{name: name, stop: make(chan struct{})}

	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		s.log.Info("poller started", zap.String("job", name), zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				s.log.Info("poller stopped", zap.String("job", name))
				return
			case <-t.C:
				job(ctx)
			}
		}
	}()
	return h
}

// StopAll stops every registered job and waits for their goroutines to exit.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	handles := s.handles
	s.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	s.wg.Wait()
}
