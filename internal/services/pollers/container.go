package pollers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/internal/sched"
)

// Container resolves one running container by name, then samples its live
// statistics on a fixed interval.
type Container struct {
	store   ports.Storage
	runtime ports.ContainerRuntime
	sched   *sched.Scheduler
	log     *zap.Logger
}

// NewContainer wires the container poller.
func NewContainer(store ports.Storage, runtime ports.ContainerRuntime, s *sched.Scheduler, log *zap.Logger) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	return &Container{store: store, runtime: runtime, sched: s, log: log}
}

// Start resolves the container once and registers the repeating sample job.
// Resolution failure is fatal for this poller: no timer is registered and a
// wrapped domain.ErrResolution is returned. A failed sample aborts only its
// own tick.
func (p *Container) Start(ctx context.Context, microservice string, interval time.Duration) (*sched.Handle, error) {
	id, err := p.resolve(ctx, microservice)
	if err != nil {
		return nil, err
	}
	p.log.Info("container resolved",
		zap.String("microservice", microservice),
		zap.String("container_id", id))

	handle := p.sched.Every(ctx, "container:"+microservice, interval, func(ctx context.Context) {
		rec, err := p.runtime.Sample(ctx, id)
		if err != nil {
			p.log.Warn("container sample failed",
				zap.String("container_id", id), zap.Error(err))
			return
		}
		rec.Microservice = microservice
		if err := p.store.InsertContainerRecord(ctx, rec); err != nil {
			p.log.Warn("container record dropped",
				zap.String("container_id", id), zap.Error(err))
		}
	})
	return handle, nil
}

// resolve scans the running containers for the first whose name equals the
// microservice name. When several containers share the name, the first one
// listed wins; the scan does not try to disambiguate.
func (p *Container) resolve(ctx context.Context, microservice string) (string, error) {
	containers, err := p.runtime.ListRunning(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrResolution, err)
	}
	for _, c := range containers {
		if c.Name == microservice {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no running container named %q", domain.ErrResolution, microservice)
}
