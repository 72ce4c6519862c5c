package toast

import (
	"math"
	"time"
)

// DefaultDuration is how long a toast stays visible unless told otherwise.
const DefaultDuration = 5 * time.Second

// MaxDurationMillis is the largest millisecond count a time.Duration holds.
const MaxDurationMillis = math.MaxInt64 / int64(time.Millisecond)

// DurationFromMillis converts ms to a Duration. Values above
// MaxDurationMillis are capped; negative values give zero (sticky).
func DurationFromMillis(ms int64) time.Duration {
	switch {
	case ms <= 0:
		return 0
	case ms > MaxDurationMillis:
		return time.Duration(MaxDurationMillis) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// Toast is a single user-facing message.
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Kind      Kind          `json:"kind"`
	Duration  time.Duration `json:"duration"` // zero: never expires
	CreatedAt time.Time     `json:"created_at"`
}

// Sticky reports whether the toast stays until removed explicitly.
func (t Toast) Sticky() bool {
	return t.Duration == 0
}

// ExpiresAt returns when the toast expires, or the zero time for sticky toasts.
func (t Toast) ExpiresAt() time.Time {
	if t.Sticky() {
		return time.Time{}
	}
	return t.CreatedAt.Add(t.Duration)
}

// EventType tells subscribers how the queue changed.
type EventType string

const (
	EventAdded   EventType = "added"
	EventRemoved EventType = "removed"
)

// Reason explains why a toast left the queue.
type Reason string

const (
	ReasonDismissed Reason = "dismissed"
	ReasonExpired   Reason = "expired"
	ReasonEvicted   Reason = "evicted"
	ReasonCleared   Reason = "cleared"
)

// Event describes one change to a Manager's queue.
type Event struct {
	Type   EventType `json:"type"`
	Toast  Toast     `json:"toast"`
	Reason Reason    `json:"reason,omitempty"` // set for EventRemoved
}
