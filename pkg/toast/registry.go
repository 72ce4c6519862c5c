package toast

import (
	"container/list"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/toastkit/pkg/broadcast"
	"github.com/dmitrymomot/toastkit/pkg/logger"
)

// DefaultCapacity is the default number of session queues a Registry keeps.
const DefaultCapacity = 10_000

type registryEntry struct {
	sessionID string
	manager   *Manager
}

// Registry holds one Manager per session. When full, the least recently used
// session's Manager is closed and dropped.
type Registry struct {
	capacity    int
	managerOpts []Option
	relay       broadcast.Broadcaster[Envelope]
	logger      *slog.Logger

	mu     sync.Mutex
	items  map[string]*list.Element
	order  *list.List // front: most recently used
	closed bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapacity bounds the number of live session queues.
func WithCapacity(n int) RegistryOption {
	if n <= 0 {
		panic("toast: registry capacity must be positive")
	}
	return func(r *Registry) { r.capacity = n }
}

// WithManagerOptions sets the options every session Manager is created with.
func WithManagerOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.managerOpts = append(r.managerOpts, opts...) }
}

// WithRelay routes Push through b so envelopes reach every instance that
// listens on it. Without a relay, Push applies envelopes locally.
func WithRelay(b broadcast.Broadcaster[Envelope]) RegistryOption {
	return func(r *Registry) { r.relay = b }
}

// WithRegistryLogger sets the logger. Session managers inherit it unless
// WithManagerOptions overrides it.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("toast.registry"))
	return r
}

// Get returns the session's Manager, creating it on first use.
func (r *Registry) Get(sessionID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.items[sessionID]; ok {
		r.order.MoveToFront(elem)
		return elem.Value.(*registryEntry).manager
	}

	opts := append([]Option{WithLogger(r.logger.With(logger.SessionID(sessionID)))}, r.managerOpts...)
	m := New(opts...)
	if r.closed {
		// Serve the caller but do not track managers after Close.
		return m
	}

	r.items[sessionID] = r.order.PushFront(&registryEntry{sessionID: sessionID, manager: m})
	for r.order.Len() > r.capacity {
		r.drop(r.order.Back())
	}
	return m
}

// Lookup returns the session's Manager if it exists, without creating it.
func (r *Registry) Lookup(sessionID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.items[sessionID]; ok {
		r.order.MoveToFront(elem)
		return elem.Value.(*registryEntry).manager, true
	}
	return nil, false
}

// Remove closes and forgets the session's Manager.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.items[sessionID]; ok {
		r.drop(elem)
	}
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Close closes every session Manager. The relay broadcaster is not closed;
// it belongs to the caller.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for r.order.Len() > 0 {
		r.drop(r.order.Back())
	}
	return nil
}

// drop must be called with mu held.
func (r *Registry) drop(elem *list.Element) {
	entry := r.order.Remove(elem).(*registryEntry)
	delete(r.items, entry.sessionID)
	_ = entry.manager.Close()
	r.logger.Debug("session queue dropped", logger.SessionID(entry.sessionID))
}
