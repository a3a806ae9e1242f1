package policies

import "context"

// Event is a fire-and-forget notification about a domain mutation. Key is
// used for partitioning; Payload must be JSON-serializable.
type Event struct {
	Name    string
	Key     string
	Payload any
}

// Booking lifecycle and account event names.
const (
	EventBookingRequested = "booking.requested"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
	EventPasswordReset    = "account.password_reset"
)

type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// NoopNotifier drops events. Used when no broker is configured and in tests.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, Event) error { return nil }

var _ Notifier = NoopNotifier{}
