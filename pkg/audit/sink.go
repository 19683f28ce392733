package audit

import (
	"context"
)

// Sink is the interface audit events are handed to after the decision
// is final. Implementations must not block the request path on failure;
// a sink error is reported to the caller for logging, never retried
// inline.
type Sink interface {
	// Record persists an audit event. The event's Timestamp is stamped
	// by the sink if unset.
	Record(ctx context.Context, event *Event) error

	// Close flushes and releases the sink.
	Close() error
}

