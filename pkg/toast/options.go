package toast

import (
	"log/slog"
	"time"
)

// Option configures a Manager.
type Option func(*Manager)

// WithDefaultDuration sets the duration used when Add gets none.
// Zero or negative makes toasts sticky by default.
func WithDefaultDuration(d time.Duration) Option {
	return func(m *Manager) { m.defaultDuration = max(d, 0) }
}

// WithMaxToasts caps the queue; when full, the oldest toast is evicted.
// Zero or negative means unlimited.
func WithMaxToasts(n int) Option {
	return func(m *Manager) { m.maxToasts = max(n, 0) }
}

// WithScheduler replaces the timer source, mainly for tests.
func WithScheduler(s Scheduler) Option {
	if s == nil {
		panic("toast: nil scheduler")
	}
	return func(m *Manager) { m.scheduler = s }
}

// WithIDGenerator replaces the UUIDv7 id source. Generated ids that clash
// with a live toast are replaced by a fresh UUID.
//
// Only live ids are checked. fn must never return an id it returned before,
// or a dismissed or expired toast's id can come back for a new toast.
func WithIDGenerator(fn func() string) Option {
	if fn == nil {
		panic("toast: nil id generator")
	}
	return func(m *Manager) { m.newID = fn }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("toast: nil clock")
	}
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer (default 32).
func WithEventBuffer(n int) Option {
	return func(m *Manager) { m.eventBuffer = n }
}

// AddOption configures a single toast.
type AddOption func(*addOptions)

type addOptions struct {
	kind        Kind
	duration    time.Duration
	hasDuration bool
}

// WithKind sets the toast kind. Unknown kinds become KindInfo.
func WithKind(k Kind) AddOption {
	return func(o *addOptions) { o.kind = k }
}

// WithDuration sets how long the toast lives. Zero or negative: sticky.
func WithDuration(d time.Duration) AddOption {
	return func(o *addOptions) {
		o.duration = max(d, 0)
		o.hasDuration = true
	}
}

// Sticky keeps the toast until it is removed explicitly.
func Sticky() AddOption {
	return WithDuration(0)
}
