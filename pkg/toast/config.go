package toast

import "time"

// Config is loaded from the environment by pkg/config.
type Config struct {
	DefaultDuration time.Duration `env:"TOAST_DEFAULT_DURATION" envDefault:"5s"`
	MaxToasts       int           `env:"TOAST_MAX_PER_SESSION" envDefault:"0"`
	MaxSessions     int           `env:"TOAST_MAX_SESSIONS" envDefault:"10000"`
	CookieName      string        `env:"TOAST_COOKIE_NAME" envDefault:"toast_session"`
	CookieSecure    bool          `env:"TOAST_COOKIE_SECURE" envDefault:"false"`
}

// NewRegistryFromConfig creates a Registry from cfg; opts are applied after it.
func NewRegistryFromConfig(cfg Config, opts ...RegistryOption) *Registry {
	configOpts := []RegistryOption{
		WithManagerOptions(
			WithDefaultDuration(cfg.DefaultDuration),
			WithMaxToasts(cfg.MaxToasts),
		),
	}
	if cfg.MaxSessions > 0 {
		configOpts = append(configOpts, WithCapacity(cfg.MaxSessions))
	}
	return NewRegistry(append(configOpts, opts...)...)
}

// MiddlewareOptions returns the cookie settings from cfg.
func (cfg Config) MiddlewareOptions() []MiddlewareOption {
	opts := []MiddlewareOption{WithCookieSecure(cfg.CookieSecure)}
	if cfg.CookieName != "" {
		opts = append(opts, WithCookieName(cfg.CookieName))
	}
	return opts
}
