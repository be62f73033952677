// Package runtime samples the Go runtime of the host process itself, so a
// service's own heap and goroutine pressure lands next to its host metrics.
package runtime

import (
	"context"
	"runtime"
	"time"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Sampler reads runtime.MemStats and goroutine counts. It never fails: the
// runtime is always available in-process.
type Sampler struct{}

var _ ports.HostSampler = (*Sampler)(nil)

// New returns a process runtime sampler.
func New() *Sampler {
	return &Sampler{}
}

// Sample collects the current runtime stats as one batch. Every record in
// the batch carries the same timestamp and the "runtime" category.
func (s *Sampler) Sample(ctx context.Context) ([]domain.HealthRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	now := time.Now()

	add := func(metric string, value float64) domain.HealthRecord {
		return domain.HealthRecord{Metric: metric, Value: value, Category: "runtime", Time: now}
	}

	return []domain.HealthRecord{
		add("heap_alloc", float64(ms.HeapAlloc)),
		add("heap_sys", float64(ms.HeapSys)),
		add("heap_objects", float64(ms.HeapObjects)),
		add("stack_inuse", float64(ms.StackInuse)),
		add("total_alloc", float64(ms.TotalAlloc)),
		add("num_gc", float64(ms.NumGC)),
		add("gc_pause_total_ns", float64(ms.PauseTotalNs)),
		add("gc_cpu_fraction", ms.GCCPUFraction),
		add("goroutines", float64(runtime.NumGoroutine())),
	}, nil
}
