// Package domain defines the records the agent collects and persists.
package domain

import "time"

// Service describes one tracked microservice. One row/document exists per
// unique name; registration is an idempotent upsert.
type Service struct {
	Microservice string
	// Interval is the sampling interval in milliseconds.
	Interval int64
}

// CommunicationRecord captures one completed inbound request. It is built
// exactly once, when the response finishes, and is never updated afterwards.
type CommunicationRecord struct {
	Microservice  string
	Endpoint      string
	Method        string
	CorrelationID string
	Status        int
	StatusText    string
	Time          time.Time
}

// HealthRecord is one sampled host-level metric (cpu, memory, disk, load).
type HealthRecord struct {
	Metric   string
	Value    float64
	Category string
	Time     time.Time
}

// MetricRecord is one broker cluster metric. Same shape as HealthRecord but
// kept distinct: the two streams come from different collaborators and land
// in different tables.
type MetricRecord struct {
	Metric   string
	Value    float64
	Category string
	Time     time.Time
}

// ContainerRecord is one sample of a resolved container's live statistics.
type ContainerRecord struct {
	Microservice  string
	ContainerID   string
	ContainerName string
	Platform      string
	StartedAt     string
	MemUsage      uint64
	MemLimit      uint64
	MemPercent    float64
	CPUPercent    float64
	NetworkRx     uint64
	NetworkTx     uint64
	Processes     uint64
	Restarts      int
	Time          time.Time
}
