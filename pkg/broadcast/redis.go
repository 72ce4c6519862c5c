package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/toastkit/pkg/logger"
)

// RedisBroadcaster publishes JSON-encoded messages on a Redis pub/sub channel.
// Every process subscribed to the same channel receives every message,
// including the publishing process itself.
//
// The Redis client is owned by the caller and is not closed by Close.
type RedisBroadcaster[T any] struct {
	client      redis.UniversalClient
	channel     string
	bufferSize  int
	logger      *slog.Logger
	subscribers map[*redisSubscriber[T]]struct{}
	closed      bool
	mu          sync.Mutex
}

// RedisOption configures a RedisBroadcaster.
type RedisOption func(*redisOptions)

type redisOptions struct {
	bufferSize int
	logger     *slog.Logger
}

// WithRedisBufferSize sets the per-subscriber buffer size (minimum 1).
func WithRedisBufferSize(n int) RedisOption {
	return func(o *redisOptions) { o.bufferSize = n }
}

// WithRedisLogger sets the logger used for decode and delivery failures.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(o *redisOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRedisBroadcaster creates a broadcaster bound to a single pub/sub channel.
func NewRedisBroadcaster[T any](client redis.UniversalClient, channel string, opts ...RedisOption) *RedisBroadcaster[T] {
	if client == nil {
		panic("broadcast: nil redis client")
	}
	if channel == "" {
		panic("broadcast: empty redis channel")
	}

	o := redisOptions{bufferSize: 64, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return &RedisBroadcaster[T]{
		client:      client,
		channel:     channel,
		bufferSize:  max(o.bufferSize, 1),
		logger:      o.logger.With(logger.Component("broadcast.redis"), slog.String("channel", channel)),
		subscribers: make(map[*redisSubscriber[T]]struct{}),
	}
}

func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return newClosedSubscriber[T]()
	}

	sub := &redisSubscriber[T]{
		pubsub: b.client.Subscribe(ctx, b.channel),
		out:    make(chan Message[T], b.bufferSize),
		done:   make(chan struct{}),
		parent: b,
	}
	b.subscribers[sub] = struct{}{}

	go sub.forward(ctx)

	return sub
}

func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}

func (b *RedisBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscriber[T], 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	clear(b.subscribers)
	b.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		errs = append(errs, sub.Close())
	}
	return errors.Join(errs...)
}

func (b *RedisBroadcaster[T]) forget(sub *redisSubscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
}

type redisSubscriber[T any] struct {
	pubsub    *redis.PubSub
	out       chan Message[T]
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	parent    *RedisBroadcaster[T]
}

func (s *redisSubscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.out
}

func (s *redisSubscriber[T]) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.pubsub.Close()
		s.parent.forget(s)
	})
	return s.closeErr
}

// forward is the only writer of out and closes it on exit.
func (s *redisSubscriber[T]) forward(ctx context.Context) {
	defer close(s.out)

	in := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case raw, ok := <-in:
			if !ok {
				return
			}
			var data T
			if err := json.Unmarshal([]byte(raw.Payload), &data); err != nil {
				s.parent.logger.Warn("dropping undecodable message", logger.Error(err))
				continue
			}
			select {
			case s.out <- Message[T]{Data: data}:
			default:
				s.parent.logger.Warn("subscriber buffer full, dropping message")
			}
		}
	}
}
