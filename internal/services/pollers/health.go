// Package pollers contains the interval-driven collectors that feed storage.
package pollers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/internal/sched"
)

// Health samples host-level metrics on a fixed interval and writes one
// batch per tick into the microservice's own table/collection. Multiple
// samplers contribute to the same batch.
type Health struct {
	store    ports.Storage
	samplers []ports.HostSampler
	sched    *sched.Scheduler
	log      *zap.Logger
}

// NewHealth wires the health poller over one or more samplers.
func NewHealth(store ports.Storage, s *sched.Scheduler, log *zap.Logger, samplers ...ports.HostSampler) *Health {
	if log == nil {
		log = zap.NewNop()
	}
	return &Health{store: store, samplers: samplers, sched: s, log: log}
}

// Start provisions the target schema and registers the repeating sample job.
// A failed sampler or write is logged and the next tick proceeds normally:
// the lost batch is not retried.
func (p *Health) Start(ctx context.Context, microservice string, interval time.Duration) *sched.Handle {
	if err := p.store.EnsureMetricsSchema(ctx, microservice); err != nil {
		p.log.Warn("health schema provisioning failed",
			zap.String("microservice", microservice), zap.Error(err))
	}

	return p.sched.Every(ctx, "health:"+microservice, interval, func(ctx context.Context) {
		var batch []domain.HealthRecord
		for _, sampler := range p.samplers {
			recs, err := sampler.Sample(ctx)
			if err != nil {
				p.log.Warn("host sample failed", zap.Error(err))
				continue
			}
			batch = append(batch, recs...)
		}
		if len(batch) == 0 {
			return
		}
		if err := p.store.InsertHealthBatch(ctx, microservice, batch); err != nil {
			p.log.Warn("health batch dropped",
				zap.String("microservice", microservice),
				zap.Int("records", len(batch)),
				zap.Error(err))
		}
	})
}
