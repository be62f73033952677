// Package rabbitmq implements the broker metrics collaborator on the
// RabbitMQ management API.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	rabbithole "github.com/michaelklishin/rabbit-hole/v2"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Client fetches cluster-wide overview metrics once per poll tick.
type Client struct {
	rh *rabbithole.Client
}

var _ ports.BrokerClient = (*Client)(nil)

// New creates a management API client for the given endpoint, e.g.
// "http://localhost:15672".
func New(endpoint, username, password string) (*Client, error) {
	rh, err := rabbithole.NewClient(endpoint, username, password)
	if err != nil {
		return nil, fmt.Errorf("create rabbitmq client: %w", err)
	}
	return &Client{rh: rh}, nil
}

// Fetch reads the cluster overview and converts it into metric records.
// The management client carries its own HTTP timeout; ctx only guards the
// surrounding tick.
func (c *Client) Fetch(ctx context.Context) ([]domain.MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ov, err := c.rh.Overview()
	if err != nil {
		return nil, fmt.Errorf("%w: broker overview: %v", domain.ErrFetch, err)
	}
	return overviewRecords(ov, time.Now()), nil
}

// overviewRecords flattens the cluster overview into the metric/value/
// category shape both storage backends expect.
func overviewRecords(ov *rabbithole.Overview, now time.Time) []domain.MetricRecord {
	add := func(metric string, value float64, category string) domain.MetricRecord {
		return domain.MetricRecord{Metric: metric, Value: value, Category: category, Time: now}
	}
	return []domain.MetricRecord{
		add("messages", float64(ov.QueueTotals.Messages), "queue"),
		add("messages_ready", float64(ov.QueueTotals.MessagesReady), "queue"),
		add("messages_unacknowledged", float64(ov.QueueTotals.MessagesUnacknowledged), "queue"),
		add("queues", float64(ov.ObjectTotals.Queues), "objects"),
		add("exchanges", float64(ov.ObjectTotals.Exchanges), "objects"),
		add("connections", float64(ov.ObjectTotals.Connections), "objects"),
		add("channels", float64(ov.ObjectTotals.Channels), "objects"),
		add("consumers", float64(ov.ObjectTotals.Consumers), "objects"),
		add("publish_rate", float64(ov.MessageStats.PublishDetails.Rate), "rates"),
		add("deliver_get_rate", float64(ov.MessageStats.DeliverGetDetails.Rate), "rates"),
		add("ack_rate", float64(ov.MessageStats.AckDetails.Rate), "rates"),
	}
}
