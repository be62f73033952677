// Package alerting fans failure notifications out to configured channels.
package alerting

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/ports"
	"github.com/akarpov/telescout/pkg/observer"
)

// alert is the event published to every channel observer.
type alert struct {
	Status  int
	Message string
}

// Dispatcher delivers one notification per failed request to every
// configured channel. Channels are attempted independently: one channel
// failing is logged and never blocks the others, and nothing propagates
// back to the request path.
type Dispatcher struct {
	subject *observer.Subject[alert]
	armed   bool
}

var _ ports.Notifier = (*Dispatcher)(nil)

// New creates a dispatcher over the given channels. With no channels the
// dispatcher is inert.
func New(log *zap.Logger, channels ...ports.AlertChannel) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	observers := make([]observer.Observer[alert], 0, len(channels))
	for _, ch := range channels {
		observers = append(observers, channelObserver(ch))
	}

	subject := observer.NewSubject(observers...)
	subject.SetErrorHandler(func(err error) {
		log.Warn("alert channel failed", zap.Error(err))
	})

	return &Dispatcher{subject: subject, armed: len(channels) > 0}
}

func channelObserver(ch ports.AlertChannel) observer.Observer[alert] {
	return observer.ObserverFunc[alert](func(ctx context.Context, a alert) error {
		if err := ch.Send(ctx, a.Status, a.Message); err != nil {
			return fmt.Errorf("%s: status %d: %w", ch.Name(), a.Status, err)
		}
		return nil
	})
}

// Armed reports whether at least one channel is configured.
func (d *Dispatcher) Armed() bool {
	return d.armed
}

// Notify sends the alert through every channel. It only fires for failure
// statuses (>= 400) and only when a channel is configured.
func (d *Dispatcher) Notify(ctx context.Context, status int, message string) {
	if status < http.StatusBadRequest || !d.Armed() {
		return
	}
	d.subject.Publish(ctx, alert{Status: status, Message: message})
}
