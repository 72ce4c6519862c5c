package toast

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/toastkit/pkg/broadcast"
	"github.com/dmitrymomot/toastkit/pkg/logger"
)

// Envelope addresses a toast to a session, possibly on another instance.
type Envelope struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
	Kind       Kind   `json:"kind,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"` // zero: manager default
	Sticky     bool   `json:"sticky,omitempty"`
}

func (e Envelope) options() []AddOption {
	opts := []AddOption{WithKind(ParseKind(string(e.Kind)))}
	switch {
	case e.Sticky:
		opts = append(opts, Sticky())
	case e.DurationMs != 0:
		opts = append(opts, WithDuration(DurationFromMillis(e.DurationMs)))
	}
	return opts
}

// Push delivers env to its session. With a relay the envelope is broadcast
// and applied by every listening instance that hosts the session; without
// one it is applied locally. Envelopes for unknown sessions are dropped.
func (r *Registry) Push(ctx context.Context, env Envelope) error {
	if env.SessionID == "" {
		return ErrEmptySessionID
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrRegistryClosed
	}

	if r.relay == nil {
		r.apply(env)
		return nil
	}
	if err := r.relay.Broadcast(ctx, broadcast.Message[Envelope]{Data: env}); err != nil {
		return fmt.Errorf("toast: relay push: %w", err)
	}
	return nil
}

// Listen applies relayed envelopes until ctx is cancelled or the relay
// subscription ends. It returns nil on cancellation. Without a relay it
// blocks until ctx is done.
func (r *Registry) Listen(ctx context.Context) error {
	if r.relay == nil {
		<-ctx.Done()
		return nil
	}

	sub := r.relay.Subscribe(ctx)
	defer sub.Close()

	r.logger.Info("listening for relayed toasts")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Receive(ctx):
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrRelayClosed
			}
			r.apply(msg.Data)
		}
	}
}

func (r *Registry) apply(env Envelope) {
	m, ok := r.Lookup(env.SessionID)
	if !ok {
		r.logger.Debug("dropping toast for unknown session", logger.SessionID(env.SessionID))
		return
	}
	m.Add(env.Message, env.options()...)
}
