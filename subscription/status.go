package subscription

import "github.com/tablemate/tablemate-web/backend"

// Status is the closed set of client-observed payment outcomes. Backend
// status strings are decoded into this set exactly once, at the network
// boundary; everything downstream branches on the enum.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusUnauthorized
	StatusFailed
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusFailed:
		return "failed"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether the status ends a payment attempt from the
// client's perspective. Only Pending is non-terminal; a manual reload is the
// sole path out of the terminal states.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// statusFromBackend maps the provider's status string. Anything other than
// "active" lands in the generic not-completed bucket.
func statusFromBackend(raw string) Status {
	if raw == "active" {
		return StatusActive
	}
	return StatusFailed
}

// Outcome is the result of reconciling one checkout session.
type Outcome struct {
	Status       Status
	Subscription *backend.SubscriptionInfo // set when the lookup returned one
	Err          error                     // cause, for StatusError
}
