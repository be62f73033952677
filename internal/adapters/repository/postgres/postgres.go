// Package postgres implements the relational storage backend.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Repo persists collected records in Postgres. Fixed tables (services,
// communications, containerinfo) are provisioned by embedded migrations;
// per-microservice metric tables are created on demand.
type Repo struct {
	db  *sql.DB
	log *zap.Logger
}

var _ ports.Storage = (*Repo)(nil)

// New wraps an existing database handle.
func New(db *sql.DB, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{db: db, log: log}
}

// Connect opens the database, verifies the connection, and runs migrations.
// On ping or migration failure it still returns a usable Repo together with
// a wrapped domain.ErrConnection: the caller logs the error and keeps
// running in a degraded state where writes fail.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*Repo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	r := New(db, log)
	if err := db.PingContext(ctx); err != nil {
		return r, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if err := Migrate(db); err != nil {
		return r, fmt.Errorf("%w: migrate: %v", domain.ErrConnection, err)
	}
	return r, nil
}

// Ping verifies the database connection using a short-lived context.
func (r *Repo) Ping(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

// EnsureMetricsSchema creates the per-target metric table if it is absent.
// The column layout is fixed: metric, value, category, time.
func (r *Repo) EnsureMetricsSchema(ctx context.Context, target string) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
id SERIAL PRIMARY KEY,
metric TEXT NOT NULL,
value DOUBLE PRECISION NOT NULL DEFAULT 0.0,
category TEXT NOT NULL DEFAULT 'event',
time TIMESTAMPTZ NOT NULL DEFAULT now())`, metricsTable(target))
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("%w: ensure schema for %q: %v", domain.ErrWrite, target, err)
	}
	return nil
}

// UpsertService inserts the service unless its name already exists.
func (r *Repo) UpsertService(ctx context.Context, svc domain.Service) error {
	const q = `INSERT INTO services (microservice, interval) VALUES ($1, $2) ON CONFLICT (microservice) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, svc.Microservice, svc.Interval); err != nil {
		if isDuplicate(err) {
			return nil
		}
		return fmt.Errorf("%w: upsert service %q: %v", domain.ErrWrite, svc.Microservice, err)
	}
	return nil
}

// InsertCommunication appends one completed-request record.
func (r *Repo) InsertCommunication(ctx context.Context, rec domain.CommunicationRecord) error {
	const q = `INSERT INTO communications (microservice, endpoint, request, responsestatus, responsemessage, time, correlatingid)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q,
		rec.Microservice, rec.Endpoint, rec.Method, rec.Status, rec.StatusText, rec.Time, rec.CorrelationID)
	if err != nil {
		return fmt.Errorf("%w: insert communication: %v", domain.ErrWrite, err)
	}
	return nil
}

// InsertHealthBatch appends one tick's host samples as a single multi-row
// INSERT into the target's metric table.
func (r *Repo) InsertHealthBatch(ctx context.Context, target string, recs []domain.HealthRecord) error {
	if len(recs) == 0 {
		return nil
	}
	args := make([]any, 0, len(recs)*4)
	for _, rec := range recs {
		args = append(args, rec.Metric, rec.Value, rec.Category, rec.Time)
	}
	return r.insertSamples(ctx, target, len(recs), args)
}

// InsertMetricBatch appends one tick's broker metrics, same layout as health.
func (r *Repo) InsertMetricBatch(ctx context.Context, target string, recs []domain.MetricRecord) error {
	if len(recs) == 0 {
		return nil
	}
	args := make([]any, 0, len(recs)*4)
	for _, rec := range recs {
		args = append(args, rec.Metric, rec.Value, rec.Category, rec.Time)
	}
	return r.insertSamples(ctx, target, len(recs), args)
}

func (r *Repo) insertSamples(ctx context.Context, target string, n int, args []any) error {
	if _, err := r.db.ExecContext(ctx, buildSampleInsert(metricsTable(target), n), args...); err != nil {
		return fmt.Errorf("%w: insert batch into %q: %v", domain.ErrWrite, target, err)
	}
	return nil
}

// InsertContainerRecord appends one container stats sample.
func (r *Repo) InsertContainerRecord(ctx context.Context, rec domain.ContainerRecord) error {
	const q = `INSERT INTO containerinfo (microservice, containername, containerid, containerplatform, containerstarttime,
containermemusage, containermemlimit, containermempercent, containercpupercent,
networkreceived, networksent, containerprocesscount, containerrestartcount, time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(ctx, q,
		rec.Microservice, rec.ContainerName, rec.ContainerID, rec.Platform, rec.StartedAt,
		int64(rec.MemUsage), int64(rec.MemLimit), rec.MemPercent, rec.CPUPercent,
		int64(rec.NetworkRx), int64(rec.NetworkTx), int64(rec.Processes), rec.Restarts, rec.Time)
	if err != nil {
		return fmt.Errorf("%w: insert container record: %v", domain.ErrWrite, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *Repo) Close(context.Context) error {
	return r.db.Close()
}

// metricsTable maps a microservice name onto a quoted, lowercased table
// identifier so dynamic names cannot break out of the statement.
func metricsTable(target string) string {
	return pq.QuoteIdentifier(strings.ToLower(target))
}

// buildSampleInsert renders a single parameterized multi-row INSERT with the
// fixed column order metric, value, category, time.
func buildSampleInsert(table string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (metric, value, category, time) VALUES ", table)
	for i := range n {
		if i > 0 {
			b.WriteByte(',')
		}
		base := i * 4
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4)
	}
	return b.String()
}

func isDuplicate(err error) bool {
	var pqe *pq.Error
	return errors.As(err, &pqe) && string(pqe.Code) == pgerrcode.UniqueViolation
}
