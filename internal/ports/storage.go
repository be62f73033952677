package ports

import (
	"context"

	"github.com/akarpov/telescout/internal/domain"
)

// Storage is the sink every collected record terminates in. Two adapters
// implement it (Postgres and Mongo); given the same input records both must
// end up with field-for-field equivalent stored data.
type Storage interface {
	// Ping verifies the underlying connection is alive.
	Ping(ctx context.Context) error
	// EnsureMetricsSchema idempotently provisions the per-target metrics
	// table/collection. Safe to call on every startup.
	EnsureMetricsSchema(ctx context.Context, target string) error
	// UpsertService inserts the service if its name is not present yet and
	// does nothing otherwise.
	UpsertService(ctx context.Context, svc domain.Service) error

	InsertCommunication(ctx context.Context, rec domain.CommunicationRecord) error
	InsertHealthBatch(ctx context.Context, target string, recs []domain.HealthRecord) error
	InsertMetricBatch(ctx context.Context, target string, recs []domain.MetricRecord) error
	InsertContainerRecord(ctx context.Context, rec domain.ContainerRecord) error

	Close(ctx context.Context) error
}
