package toast

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/toastkit/pkg/broadcast"
	"github.com/dmitrymomot/toastkit/pkg/logger"
)

// Manager owns one ordered queue of toasts and their expiry timers.
// All methods are safe for concurrent use; each call and each timer
// callback is applied as a single atomic step.
type Manager struct {
	defaultDuration time.Duration
	maxToasts       int
	eventBuffer     int
	scheduler       Scheduler
	newID           func() string
	now             func() time.Time
	logger          *slog.Logger

	mu       sync.Mutex
	toasts   []Toast
	timers   map[string]Timer
	watchers map[chan struct{}]struct{}
	closed   bool
	events   *broadcast.MemoryBroadcaster[Event]
}

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		defaultDuration: DefaultDuration,
		eventBuffer:     32,
		scheduler:       RealScheduler,
		newID:           newUUID,
		now:             time.Now,
		logger:          slog.Default(),
		timers:          make(map[string]Timer),
		watchers:        make(map[chan struct{}]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.events = broadcast.NewMemoryBroadcaster[Event](m.eventBuffer)
	return m
}

// Add appends a toast and returns its id. Without options the toast is
// KindInfo and lives for the manager's default duration.
func (m *Manager) Add(message string, opts ...AddOption) string {
	o := addOptions{kind: KindInfo}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.kind.Valid() {
		o.kind = KindInfo
	}
	if !o.hasDuration {
		o.duration = m.defaultDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.uniqueID(),
		Message:   message,
		Kind:      o.kind,
		Duration:  o.duration,
		CreatedAt: m.now(),
	}
	m.toasts = append(m.toasts, t)

	if t.Duration > 0 {
		id := t.ID
		m.timers[id] = m.scheduler.AfterFunc(t.Duration, func() { m.expire(id) })
	}

	m.logger.Debug("toast added",
		logger.ToastID(t.ID),
		logger.ToastKind(t.Kind.String()),
		logger.Duration(t.Duration),
	)
	m.publish(Event{Type: EventAdded, Toast: t})

	if m.maxToasts > 0 && len(m.toasts) > m.maxToasts {
		m.removeAt(0, ReasonEvicted)
	}

	return t.ID
}

// Success adds a KindSuccess toast.
func (m *Manager) Success(message string, opts ...AddOption) string {
	return m.Add(message, append(slices.Clip(opts), WithKind(KindSuccess))...)
}

// Error adds a KindError toast.
func (m *Manager) Error(message string, opts ...AddOption) string {
	return m.Add(message, append(slices.Clip(opts), WithKind(KindError))...)
}

// Warning adds a KindWarning toast.
func (m *Manager) Warning(message string, opts ...AddOption) string {
	return m.Add(message, append(slices.Clip(opts), WithKind(KindWarning))...)
}

// Info adds a KindInfo toast.
func (m *Manager) Info(message string, opts ...AddOption) string {
	return m.Add(message, append(slices.Clip(opts), WithKind(KindInfo))...)
}

// Remove dismisses the toast with the given id and cancels its timer.
// Unknown or already removed ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		m.removeAt(i, ReasonDismissed)
	}
}

// Clear dismisses every toast.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.toasts) > 0 {
		m.removeAt(0, ReasonCleared)
	}
}

// List returns a snapshot of the queue, oldest first.
func (m *Manager) List() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.toasts)
}

// Get returns the live toast with the given id.
func (m *Manager) Get(id string) (Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(id); i >= 0 {
		return m.toasts[i], true
	}
	return Toast{}, false
}

// Len returns the number of live toasts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// Subscribe streams queue changes until ctx is cancelled, the subscriber is
// closed, or the manager is closed. Events are delivered in mutation order;
// a subscriber that falls behind is disconnected. Renderers that only need
// to know the queue changed should use Watch.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	return m.events.Subscribe(ctx)
}

// Watch returns a channel that receives a value after the queue changes.
// Changes coalesce into at most one pending value and a slow receiver is
// never disconnected. Re-read the queue with List on every receive.
// The channel is closed when ctx is done or the manager is closed.
func (m *Manager) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch
	}
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	context.AfterFunc(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.watchers[ch]; ok {
			delete(m.watchers, ch)
			close(ch)
		}
	})
	return ch
}

// Close cancels pending timers, drops queued toasts without emitting events
// and ends all subscriptions and watches. The manager stays usable as a
// plain queue.
func (m *Manager) Close() error {
	m.mu.Lock()
	for id, timer := range m.timers {
		timer.Stop()
		delete(m.timers, id)
	}
	m.toasts = nil
	m.closed = true
	for ch := range m.watchers {
		close(ch)
	}
	clear(m.watchers)
	m.mu.Unlock()

	return m.events.Close()
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The timer may fire after a concurrent Remove already won.
	if i := m.indexOf(id); i >= 0 {
		m.removeAt(i, ReasonExpired)
	}
}

// removeAt must be called with mu held.
func (m *Manager) removeAt(i int, reason Reason) {
	t := m.toasts[i]
	m.toasts = slices.Delete(m.toasts, i, i+1)

	if timer, ok := m.timers[t.ID]; ok {
		if reason != ReasonExpired {
			timer.Stop()
		}
		delete(m.timers, t.ID)
	}

	m.logger.Debug("toast removed",
		logger.ToastID(t.ID),
		slog.String("reason", string(reason)),
	)
	m.publish(Event{Type: EventRemoved, Toast: t, Reason: reason})
}

// publish must be called with mu held so events keep mutation order.
func (m *Manager) publish(ev Event) {
	// Only fails once the manager is closed, when nobody is listening.
	_ = m.events.Broadcast(context.Background(), broadcast.Message[Event]{Data: ev})

	for ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *Manager) indexOf(id string) int {
	return slices.IndexFunc(m.toasts, func(t Toast) bool { return t.ID == id })
}

// uniqueID must be called with mu held.
func (m *Manager) uniqueID() string {
	if id := m.newID(); id != "" && m.indexOf(id) < 0 {
		return id
	}
	return newUUID()
}

// newUUID returns a time-ordered UUIDv7, falling back to a random v4.
func newUUID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
