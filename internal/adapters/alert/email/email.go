// Package email implements the SMTP alert channel.
package email

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/akarpov/telescout/internal/ports"
)

// Config carries everything the channel needs to deliver mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Channel sends failure notifications by email.
type Channel struct {
	cfg Config
}

var _ ports.AlertChannel = (*Channel)(nil)

// New creates an email channel from the given configuration.
func New(cfg Config) *Channel {
	return &Channel{cfg: cfg}
}

// Name identifies the channel in logs.
func (c *Channel) Name() string { return "email" }

// Send delivers one alert mail. Dial and send are synchronous; the
// dispatcher runs channels off the request path, so blocking here is fine.
func (c *Channel) Send(ctx context.Context, status int, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := buildMessage(c.cfg, status, message, time.Now())
	d := gomail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.Username, c.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}
	return nil
}

func buildMessage(cfg Config, status int, message string, now time.Time) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", cfg.To...)
	m.SetHeader("Subject", subject(status))
	m.SetBody("text/plain", body(status, message, now))
	return m
}

func subject(status int) string {
	return fmt.Sprintf("[telescout] request failed with status %d", status)
}

func body(status int, message string, now time.Time) string {
	return fmt.Sprintf("A traced request completed with status %d (%s) at %s.\n",
		status, message, now.Format(time.RFC3339))
}
