package ports

import (
	"context"

	"github.com/akarpov/telescout/internal/domain"
)

// HostSampler pulls one batch of host-level metrics per poll tick.
type HostSampler interface {
	Sample(ctx context.Context) ([]domain.HealthRecord, error)
}

// ContainerSummary is one entry from a container list operation.
type ContainerSummary struct {
	ID   string
	Name string
}

// ContainerRuntime is the narrow slice of a container engine the agent needs:
// listing running containers for identity resolution and sampling live stats
// of a resolved container.
type ContainerRuntime interface {
	ListRunning(ctx context.Context) ([]ContainerSummary, error)
	Sample(ctx context.Context, id string) (domain.ContainerRecord, error)
}

// BrokerClient fetches current message-broker cluster metrics, consumed once
// per poll tick.
type BrokerClient interface {
	Fetch(ctx context.Context) ([]domain.MetricRecord, error)
}
