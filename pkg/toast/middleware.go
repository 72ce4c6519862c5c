package toast

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/toastkit/pkg/logger"
)

// DefaultCookieName names the cookie that identifies a toast session.
const DefaultCookieName = "toast_session"

type sessionKey struct{}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	cookieName   string
	cookiePath   string
	cookieSecure bool
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) MiddlewareOption {
	if name == "" {
		panic("toast: empty cookie name")
	}
	return func(c *middlewareConfig) { c.cookieName = name }
}

// WithCookiePath sets the session cookie path (default "/").
func WithCookiePath(path string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if path != "" {
			c.cookiePath = path
		}
	}
}

// WithCookieSecure marks the session cookie Secure.
func WithCookieSecure(secure bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.cookieSecure = secure }
}

// Middleware provisions the browser session's Manager on the request context.
//
// The session is identified by an HttpOnly cookie holding a UUID. Requests
// without a valid cookie get a new session and a Set-Cookie header.
func Middleware(reg *Registry, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if reg == nil {
		panic("toast: Middleware called with nil registry")
	}

	cfg := middlewareConfig{
		cookieName: DefaultCookieName,
		cookiePath: "/",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(cfg.cookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sessionID = id.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.cookieName,
					Value:    sessionID,
					Path:     cfg.cookiePath,
					HttpOnly: true,
					Secure:   cfg.cookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
			ctx = WithContext(ctx, reg.Get(sessionID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the toast session id stored by Middleware.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey{}).(string)
	return id, ok
}

// SessionIDExtractor adds the toast session id to log records.
// It matches logger.ContextExtractor.
func SessionIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := SessionID(ctx); ok {
		return logger.SessionID(id), true
	}
	return slog.Attr{}, false
}
