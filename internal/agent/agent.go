// Package agent wires the collection pipeline and owns its lifecycle.
package agent

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/adapters/http/ginserver/middlewares"
	"github.com/akarpov/telescout/internal/config"
	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/internal/sched"
	"github.com/akarpov/telescout/internal/services/alerting"
	"github.com/akarpov/telescout/internal/services/pollers"
	"github.com/akarpov/telescout/internal/services/registrar"
)

// Agent is the embeddable instrumentation agent. The host service creates
// one per process, mounts Middleware on its router, and calls Start.
type Agent struct {
	cfg   config.AgentConfig
	store ports.Storage
	log   *zap.Logger

	samplers []ports.HostSampler
	runtime  ports.ContainerRuntime
	broker   ports.BrokerClient

	sched  *sched.Scheduler
	reg    *registrar.Registrar
	alerts *alerting.Dispatcher
}

// Option customizes the agent's collaborators.
type Option func(*Agent)

// WithHostSampler adds a host metrics collaborator. The option may be given
// more than once; all samplers feed the same batch. Without one the health
// poller stays off.
func WithHostSampler(s ports.HostSampler) Option {
	return func(a *Agent) { a.samplers = append(a.samplers, s) }
}

// WithContainerRuntime sets the container engine collaborator. Without one
// the container poller stays off regardless of configuration.
func WithContainerRuntime(r ports.ContainerRuntime) Option {
	return func(a *Agent) { a.runtime = r }
}

// WithBroker sets the message-broker metrics collaborator. Without one the
// queue poller stays off.
func WithBroker(b ports.BrokerClient) Option {
	return func(a *Agent) { a.broker = b }
}

// WithAlertChannels configures the channels failed requests are reported to.
func WithAlertChannels(channels ...ports.AlertChannel) Option {
	return func(a *Agent) { a.alerts = alerting.New(a.log, channels...) }
}

// New creates an agent writing through store. Collaborators are supplied
// via options so hosts (and tests) control exactly what runs.
func New(cfg config.AgentConfig, store ports.Storage, log *zap.Logger, opts ...Option) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Agent{
		cfg:   cfg,
		store: store,
		log:   log,
		sched: sched.New(log),
	}
	a.reg = registrar.New(store, log)
	a.alerts = alerting.New(log)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start registers the microservice and launches the configured pollers.
// Container identity resolution runs first: its failure is a startup
// configuration error that aborts Start before any timer is registered.
// Everything after that degrades gracefully instead of failing.
func (a *Agent) Start(ctx context.Context) error {
	a.reg.Register(ctx, a.cfg.Microservice, a.cfg.Interval)

	if a.runtime != nil && a.cfg.ContainerEnabled {
		cp := pollers.NewContainer(a.store, a.runtime, a.sched, a.log)
		if _, err := cp.Start(ctx, a.cfg.ContainerName, a.cfg.Interval); err != nil {
			return err
		}
	}

	if len(a.samplers) > 0 {
		hp := pollers.NewHealth(a.store, a.sched, a.log, a.samplers...)
		hp.Start(ctx, a.cfg.Microservice, a.cfg.Interval)
	}

	if a.broker != nil {
		qp := pollers.NewQueue(a.store, a.broker, a.reg, a.sched, a.log)
		qp.Start(ctx, a.cfg.BrokerName, a.cfg.Interval)
	}

	return nil
}

// Stop halts every poller and closes the storage backend.
func (a *Agent) Stop(ctx context.Context) {
	a.sched.StopAll()
	if err := a.store.Close(ctx); err != nil {
		a.log.Warn("storage close failed", zap.Error(err))
	}
}

// Ping reports whether the storage backend is reachable.
func (a *Agent) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Middleware returns the tracing middleware the host mounts on its router.
func (a *Agent) Middleware() gin.HandlerFunc {
	return middlewares.Tracer(a.cfg.Microservice, a.store, a.alerts, a.log)
}
