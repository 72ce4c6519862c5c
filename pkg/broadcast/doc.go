// Package broadcast provides typed one-to-many message fan-out.
//
// Two Broadcaster implementations are available:
//
//   - MemoryBroadcaster delivers within the process. Slow subscribers are
//     dropped instead of blocking the publisher.
//   - RedisBroadcaster publishes JSON-encoded payloads on a Redis pub/sub
//     channel so every process subscribed to it receives them.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[toast.Event](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[toast.Event]{Data: ev})
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscriptions end when the subscriber's context is cancelled, when Close is
// called on the subscriber, or when the broadcaster is closed. In every case
// the receive channel is closed.
package broadcast
