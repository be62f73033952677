// Package host implements the host-level health sampler on gopsutil.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Sampler pulls one batch of CPU, memory, disk and load metrics per call.
// Individual probe failures are tolerated; Sample only fails when every
// probe failed.
type Sampler struct {
	// DiskPath is the mount point measured for disk usage. Defaults to "/".
	DiskPath string
}

var _ ports.HostSampler = (*Sampler)(nil)

// New returns a Sampler measuring the root filesystem.
func New() *Sampler {
	return &Sampler{DiskPath: "/"}
}

// Sample collects the current host metrics as one batch.
func (s *Sampler) Sample(ctx context.Context) ([]domain.HealthRecord, error) {
	now := time.Now()
	out := make([]domain.HealthRecord, 0, 12)
	var lastErr error

	add := func(metric string, value float64, category string) {
		out = append(out, domain.HealthRecord{Metric: metric, Value: value, Category: category, Time: now})
	}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		lastErr = err
	} else if len(pct) > 0 {
		add("cpu_percent", pct[0], "cpu")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		lastErr = err
	} else if vm != nil {
		add("mem_total", float64(vm.Total), "memory")
		add("mem_used", float64(vm.Used), "memory")
		add("mem_free", float64(vm.Free), "memory")
		add("mem_percent", vm.UsedPercent, "memory")
	}

	path := s.DiskPath
	if path == "" {
		path = "/"
	}
	if du, err := disk.UsageWithContext(ctx, path); err != nil {
		lastErr = err
	} else if du != nil {
		add("disk_total", float64(du.Total), "disk")
		add("disk_used", float64(du.Used), "disk")
		add("disk_percent", du.UsedPercent, "disk")
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		lastErr = err
	} else if avg != nil {
		add("load_1", avg.Load1, "load")
		add("load_5", avg.Load5, "load")
		add("load_15", avg.Load15, "load")
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: host sample: %v", domain.ErrFetch, lastErr)
	}
	return out, nil
}
