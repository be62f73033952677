// Package registrar registers tracked microservices in storage.
package registrar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Registrar upserts one Service descriptor per microservice name.
type Registrar struct {
	store ports.Storage
	log   *zap.Logger
}

// New creates a Registrar writing through store.
func New(store ports.Storage, log *zap.Logger) *Registrar {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registrar{store: store, log: log}
}

// Register upserts the named service. Registration is idempotent and never
// surfaces an error to the caller: duplicates are a no-op by contract and
// write failures are logged here.
func (r *Registrar) Register(ctx context.Context, name string, interval time.Duration) {
	svc := domain.Service{Microservice: name, Interval: interval.Milliseconds()}
	if err := r.store.UpsertService(ctx, svc); err != nil {
		r.log.Warn("service registration failed",
			zap.String("microservice", name),
			zap.Error(err),
		)
		return
	}
	r.log.Info("service registered",
		zap.String("microservice", name),
		zap.Duration("interval", interval),
	)
}
