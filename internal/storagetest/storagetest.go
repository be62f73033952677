// Package storagetest provides an in-memory Storage double for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Store records every write in memory. It honors the upsert contract for
// services and can be told to fail all writes, mimicking a dead backend.
type Store struct {
	mu sync.Mutex

	err            error
	services       []domain.Service
	communications []domain.CommunicationRecord
	healthBatches  map[string][][]domain.HealthRecord
	metricBatches  map[string][][]domain.MetricRecord
	containers     []domain.ContainerRecord
	ensured        []string
	closed         bool

	// WriteDone, when set, receives one signal per successful write. Tests
	// use it to wait for asynchronous inserts.
	WriteDone chan struct{}
}

var _ ports.Storage = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		healthBatches: map[string][][]domain.HealthRecord{},
		metricBatches: map[string][][]domain.MetricRecord{},
	}
}

// FailWith makes every subsequent write return err. Pass nil to heal.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) signal() {
	if s.WriteDone != nil {
		s.WriteDone <- struct{}{}
	}
}

// Ping reports the configured failure, if any.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// EnsureMetricsSchema records the provisioned target name.
func (s *Store) EnsureMetricsSchema(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.ensured = append(s.ensured, target)
	return nil
}

// UpsertService inserts the service unless the name is already present.
func (s *Store) UpsertService(_ context.Context, svc domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.services {
		if existing.Microservice == svc.Microservice {
			return nil
		}
	}
	s.services = append(s.services, svc)
	return nil
}

// InsertCommunication appends the record.
func (s *Store) InsertCommunication(_ context.Context, rec domain.CommunicationRecord) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.communications = append(s.communications, rec)
	s.mu.Unlock()
	s.signal()
	return nil
}

// InsertHealthBatch appends the batch under the target name.
func (s *Store) InsertHealthBatch(_ context.Context, target string, recs []domain.HealthRecord) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.healthBatches[target] = append(s.healthBatches[target], recs)
	s.mu.Unlock()
	s.signal()
	return nil
}

// InsertMetricBatch appends the batch under the target name.
func (s *Store) InsertMetricBatch(_ context.Context, target string, recs []domain.MetricRecord) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.metricBatches[target] = append(s.metricBatches[target], recs)
	s.mu.Unlock()
	s.signal()
	return nil
}

// InsertContainerRecord appends the record.
func (s *Store) InsertContainerRecord(_ context.Context, rec domain.ContainerRecord) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.containers = append(s.containers, rec)
	s.mu.Unlock()
	s.signal()
	return nil
}

// Close marks the store closed.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Services returns a copy of the stored services.
func (s *Store) Services() []domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Service(nil), s.services...)
}

// Communications returns a copy of the stored communication records.
func (s *Store) Communications() []domain.CommunicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CommunicationRecord(nil), s.communications...)
}

// HealthBatches returns the batches stored for target.
func (s *Store) HealthBatches(target string) [][]domain.HealthRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.HealthRecord(nil), s.healthBatches[target]...)
}

// MetricBatches returns the batches stored for target.
func (s *Store) MetricBatches(target string) [][]domain.MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.MetricRecord(nil), s.metricBatches[target]...)
}

// ContainerRecords returns a copy of the stored container records.
func (s *Store) ContainerRecords() []domain.ContainerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ContainerRecord(nil), s.containers...)
}

// Ensured returns the targets whose schema was provisioned.
func (s *Store) Ensured() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ensured...)
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
