package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"

	"github.com/akarpov/telescout/internal/domain"
)

func newMock(t *testing.T) (*Repo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	repo := New(db, nil)
	done := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, done
}

func TestRepo_UpsertService(t *testing.T) {
	const pat = `INSERT INTO services \(microservice, interval\) VALUES \(\$1, \$2\) ON CONFLICT \(microservice\) DO NOTHING`
	svc := domain.Service{Microservice: "customers", Interval: 2000}

	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			"inserted",
			func(m sqlmock.Sqlmock) {
				m.ExpectExec(pat).WithArgs("customers", int64(2000)).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			false,
		},
		{
			"already present",
			func(m sqlmock.Sqlmock) {
				m.ExpectExec(pat).WithArgs("customers", int64(2000)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			false,
		},
		{
			"duplicate race swallowed",
			func(m sqlmock.Sqlmock) {
				m.ExpectExec(pat).WithArgs("customers", int64(2000)).
					WillReturnError(&pq.Error{Code: pq.ErrorCode(pgerrcode.UniqueViolation)})
			},
			false,
		},
		{
			"transport failure",
			func(m sqlmock.Sqlmock) {
				m.ExpectExec(pat).WithArgs("customers", int64(2000)).
					WillReturnError(errors.New("broken pipe"))
			},
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMock(t)
			defer done()
			tc.setup(mock)

			err := repo.UpsertService(context.Background(), svc)
			if (err != nil) != tc.wantErr {
				t.Fatalf("UpsertService() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrWrite) {
				t.Fatalf("error %v is not a WriteError", err)
			}
		})
	}
}

func TestRepo_InsertCommunication(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	now := time.Now()
	rec := domain.CommunicationRecord{
		Microservice:  "customers",
		Endpoint:      "/api/customers",
		Method:        "GET",
		CorrelationID: "abc-123",
		Status:        200,
		StatusText:    "OK",
		Time:          now,
	}

	mock.ExpectExec(`INSERT INTO communications`).
		WithArgs("customers", "/api/customers", "GET", 200, "OK", now, "abc-123").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.InsertCommunication(context.Background(), rec); err != nil {
		t.Fatalf("InsertCommunication() error = %v", err)
	}
}

func TestRepo_InsertCommunication_WriteError(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectExec(`INSERT INTO communications`).
		WillReturnError(errors.New("down"))

	err := repo.InsertCommunication(context.Background(), domain.CommunicationRecord{})
	if !errors.Is(err, domain.ErrWrite) {
		t.Fatalf("InsertCommunication() error = %v, want ErrWrite", err)
	}
}

func TestRepo_EnsureMetricsSchema(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "customers"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureMetricsSchema(context.Background(), "Customers"); err != nil {
		t.Fatalf("EnsureMetricsSchema() error = %v", err)
	}
}

func TestRepo_InsertHealthBatch(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	now := time.Now()
	recs := []domain.HealthRecord{
		{Metric: "cpu_percent", Value: 12.5, Category: "cpu", Time: now},
		{Metric: "mem_used", Value: 1024, Category: "memory", Time: now},
	}

	want := `INSERT INTO "customers" (metric, value, category, time) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)`
	mock.ExpectExec(regexp.QuoteMeta(want)).
		WithArgs("cpu_percent", 12.5, "cpu", now, "mem_used", 1024.0, "memory", now).
		WillReturnResult(sqlmock.NewResult(2, 2))

	if err := repo.InsertHealthBatch(context.Background(), "customers", recs); err != nil {
		t.Fatalf("InsertHealthBatch() error = %v", err)
	}
}

func TestRepo_InsertHealthBatch_Empty(t *testing.T) {
	repo, _, done := newMock(t)
	defer done()

	// No expectations: an empty batch must not touch the database.
	if err := repo.InsertHealthBatch(context.Background(), "customers", nil); err != nil {
		t.Fatalf("InsertHealthBatch(empty) error = %v", err)
	}
}

func TestRepo_InsertMetricBatch(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	now := time.Now()
	recs := []domain.MetricRecord{
		{Metric: "messages_ready", Value: 3, Category: "queue", Time: now},
	}

	want := `INSERT INTO "rabbitmq" (metric, value, category, time) VALUES ($1,$2,$3,$4)`
	mock.ExpectExec(regexp.QuoteMeta(want)).
		WithArgs("messages_ready", 3.0, "queue", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.InsertMetricBatch(context.Background(), "rabbitmq", recs); err != nil {
		t.Fatalf("InsertMetricBatch() error = %v", err)
	}
}

func TestRepo_InsertContainerRecord(t *testing.T) {
	repo, mock, done := newMock(t)
	defer done()

	now := time.Now()
	rec := domain.ContainerRecord{
		Microservice:  "customers",
		ContainerID:   "deadbeef",
		ContainerName: "customers",
		Platform:      "linux",
		StartedAt:     "2026-08-23T10:00:00Z",
		MemUsage:      512,
		MemLimit:      1024,
		MemPercent:    50,
		CPUPercent:    7.5,
		NetworkRx:     100,
		NetworkTx:     200,
		Processes:     5,
		Restarts:      1,
		Time:          now,
	}

	mock.ExpectExec(`INSERT INTO containerinfo`).
		WithArgs("customers", "customers", "deadbeef", "linux", "2026-08-23T10:00:00Z",
			int64(512), int64(1024), 50.0, 7.5, int64(100), int64(200), int64(5), 1, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.InsertContainerRecord(context.Background(), rec); err != nil {
		t.Fatalf("InsertContainerRecord() error = %v", err)
	}
}

func TestBuildSampleInsert(t *testing.T) {
	got := buildSampleInsert(`"svc"`, 3)
	want := `INSERT INTO "svc" (metric, value, category, time) VALUES ($1,$2,$3,$4),($5,$6,$7,$8),($9,$10,$11,$12)`
	if got != want {
		t.Fatalf("buildSampleInsert() = %q, want %q", got, want)
	}
}

func TestMetricsTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"customers", `"customers"`},
		{"Customers", `"customers"`},
		{`evil"; drop table services; --`, `"evil""; drop table services; --"`},
	}
	for _, tc := range tests {
		if got := metricsTable(tc.in); got != tc.want {
			t.Fatalf("metricsTable(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
