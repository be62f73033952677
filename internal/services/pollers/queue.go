package pollers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/internal/sched"
	"github.com/akarpov/telescout/internal/services/registrar"
)

// Queue polls message-broker cluster metrics on a fixed interval.
type Queue struct {
	store  ports.Storage
	broker ports.BrokerClient
	reg    *registrar.Registrar
	sched  *sched.Scheduler
	log    *zap.Logger
}

// NewQueue wires the queue metrics poller.
func NewQueue(store ports.Storage, broker ports.BrokerClient, reg *registrar.Registrar, s *sched.Scheduler, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{store: store, broker: broker, reg: reg, sched: s, log: log}
}

// Start registers the broker as a tracked service, provisions its metric
// table, and registers the repeating fetch job. Fetch and write failures
// are logged and polling continues at the configured interval.
func (p *Queue) Start(ctx context.Context, brokerName string, interval time.Duration) *sched.Handle {
	p.reg.Register(ctx, brokerName, interval)
	if err := p.store.EnsureMetricsSchema(ctx, brokerName); err != nil {
		p.log.Warn("broker schema provisioning failed",
			zap.String("broker", brokerName), zap.Error(err))
	}

	return p.sched.Every(ctx, "queue:"+brokerName, interval, func(ctx context.Context) {
		recs, err := p.broker.Fetch(ctx)
		if err != nil {
			p.log.Warn("broker fetch failed", zap.String("broker", brokerName), zap.Error(err))
			return
		}
		if len(recs) == 0 {
			return
		}
		if err := p.store.InsertMetricBatch(ctx, brokerName, recs); err != nil {
			p.log.Warn("broker batch dropped",
				zap.String("broker", brokerName),
				zap.Int("records", len(recs)),
				zap.Error(err))
		}
	})
}
