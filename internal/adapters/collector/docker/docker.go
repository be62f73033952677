// Package docker implements the container runtime port on the Docker Engine API.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Runtime lists running containers and samples live statistics of one of
// them through the Docker Engine API.
type Runtime struct {
	cli *client.Client
}

var _ ports.ContainerRuntime = (*Runtime)(nil)

// NewRuntime creates a Runtime with a Docker client from the environment.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient wraps an existing Docker client.
func NewRuntimeFromClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

// ListRunning returns the currently running containers. Docker reports names
// with a leading slash which is stripped here.
func (r *Runtime) ListRunning(ctx context.Context) ([]ports.ContainerSummary, error) {
	containers, err := r.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	out := make([]ports.ContainerSummary, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		out = append(out, ports.ContainerSummary{ID: c.ID, Name: name})
	}
	return out, nil
}

// Sample inspects the container and takes one non-streaming stats reading.
func (r *Runtime) Sample(ctx context.Context, id string) (domain.ContainerRecord, error) {
	info, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.ContainerRecord{}, fmt.Errorf("%w: inspect container %q: %v", domain.ErrFetch, id, err)
	}

	resp, err := r.cli.ContainerStats(ctx, id, false)
	if err != nil {
		return domain.ContainerRecord{}, fmt.Errorf("%w: stats for container %q: %v", domain.ErrFetch, id, err)
	}
	defer resp.Body.Close()

	var st container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return domain.ContainerRecord{}, fmt.Errorf("%w: decode stats for %q: %v", domain.ErrFetch, id, err)
	}

	rec := newRecord(st, time.Now())
	rec.ContainerID = info.ID
	rec.ContainerName = strings.TrimPrefix(info.Name, "/")
	rec.Platform = info.Platform
	rec.Restarts = info.RestartCount
	if info.State != nil {
		rec.StartedAt = info.State.StartedAt
	}
	return rec, nil
}

func newRecord(st container.StatsResponse, now time.Time) domain.ContainerRecord {
	usage, limit, memPct := memUsage(st)
	rx, tx := networkTotals(st)
	return domain.ContainerRecord{
		MemUsage:   usage,
		MemLimit:   limit,
		MemPercent: memPct,
		CPUPercent: cpuPercent(st),
		NetworkRx:  rx,
		NetworkTx:  tx,
		Processes:  st.PidsStats.Current,
		Time:       now,
	}
}

// cpuPercent computes the CPU usage percentage the same way the docker CLI
// does: delta of container usage over delta of system usage, scaled by the
// number of online CPUs.
func cpuPercent(st container.StatsResponse) float64 {
	cpuDelta := float64(st.CPUStats.CPUUsage.TotalUsage) - float64(st.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(st.CPUStats.SystemUsage) - float64(st.PreCPUStats.SystemUsage)
	online := float64(st.CPUStats.OnlineCPUs)
	if online == 0 {
		online = float64(len(st.CPUStats.CPUUsage.PercpuUsage))
	}
	if sysDelta <= 0 || cpuDelta < 0 {
		return 0
	}
	return cpuDelta / sysDelta * online * 100
}

// memUsage subtracts the page cache from the raw usage when the kernel
// reports it (cgroup v1) so the numbers line up with `docker stats`.
func memUsage(st container.StatsResponse) (usage, limit uint64, pct float64) {
	usage = st.MemoryStats.Usage
	if cache, ok := st.MemoryStats.Stats["cache"]; ok && cache < usage {
		usage -= cache
	}
	limit = st.MemoryStats.Limit
	if limit > 0 {
		pct = float64(usage) / float64(limit) * 100
	}
	return usage, limit, pct
}

func networkTotals(st container.StatsResponse) (rx, tx uint64) {
	for _, n := range st.Networks {
		rx += n.RxBytes
		tx += n.TxBytes
	}
	return rx, tx
}
