// Package slack implements the Slack webhook alert channel.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/akarpov/telescout/internal/ports"
)

// Channel posts failure notifications to an incoming-webhook URL.
type Channel struct {
	webhookURL string
}

var _ ports.AlertChannel = (*Channel)(nil)

// New creates a channel for the given incoming-webhook URL.
func New(webhookURL string) *Channel {
	return &Channel{webhookURL: webhookURL}
}

// Name identifies the channel in logs.
func (c *Channel) Name() string { return "slack" }

// Send posts one alert message.
func (c *Channel) Send(ctx context.Context, status int, message string) error {
	msg := &slack.WebhookMessage{Text: formatAlert(status, message)}
	if err := slack.PostWebhookContext(ctx, c.webhookURL, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

func formatAlert(status int, message string) string {
	return fmt.Sprintf(":rotating_light: request failed with status %d (%s)", status, message)
}
