// Package redis connects toastkit services to Redis, which carries toast
// envelopes between instances (see broadcast.RedisBroadcaster).
//
// Connect parses a redis:// URL, pings the server and retries until it
// answers or the attempts run out:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Healthcheck adapts the client to the readiness probe signature used by
// httpserver.HealthCheckHandler.
//
// Config is populated from the environment via github.com/caarlos0/env. An
// empty REDIS_URL means Redis is disabled and callers fall back to
// in-process fan-out.
package redis
