package ports

import "context"

// AlertChannel delivers one failure notification. Channel configuration is
// supplied at construction time; the dispatcher only passes the status.
type AlertChannel interface {
	Name() string
	Send(ctx context.Context, status int, message string) error
}

// Notifier is what the tracing middleware sees of the alert dispatcher.
type Notifier interface {
	Notify(ctx context.Context, status int, message string)
}
