// Command toastdemo serves a page where each browser session gets its own
// toast queue, streamed to the page over datastar SSE.
//
// With REDIS_URL set, toasts pushed on one instance reach sessions hosted by
// any instance; otherwise the relay is in-process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/toastkit/pkg/broadcast"
	"github.com/dmitrymomot/toastkit/pkg/config"
	"github.com/dmitrymomot/toastkit/pkg/httpserver"
	"github.com/dmitrymomot/toastkit/pkg/logger"
	"github.com/dmitrymomot/toastkit/pkg/redis"
	"github.com/dmitrymomot/toastkit/pkg/toast"
	"github.com/dmitrymomot/toastkit/pkg/toastui"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Service  string `env:"APP_NAME" envDefault:"toastdemo"`
	LogLevel string `env:"LOG_LEVEL"`

	HTTP  httpserver.Config
	Toast toast.Config
	Redis redis.Config
}

func main() {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
		logger.WithContextExtractors(toast.SessionIDExtractor),
	}
	if cfg.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(cfg.LogLevel))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("toastdemo stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("toastdemo stopped")
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	var (
		relay  broadcast.Broadcaster[toast.Envelope]
		checks []func(context.Context) error
	)
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		relay = broadcast.NewRedisBroadcaster[toast.Envelope](client, cfg.Redis.Channel,
			broadcast.WithRedisLogger(log),
		)
		checks = append(checks, redis.Healthcheck(client))
		log.Info("toast relay over redis", slog.String("channel", cfg.Redis.Channel))
	} else {
		relay = broadcast.NewMemoryBroadcaster[toast.Envelope](256)
		log.Info("toast relay in memory")
	}
	defer relay.Close()

	registry := toast.NewRegistryFromConfig(cfg.Toast,
		toast.WithRelay(relay),
		toast.WithRegistryLogger(log),
	)
	defer registry.Close()

	ui := toastui.NewHandler(toastui.WithLogger(log), toastui.WithPusher(registry))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, checks...))
	r.Group(func(r chi.Router) {
		r.Use(toast.Middleware(registry, cfg.Toast.MiddlewareOptions()...))
		r.Get("/", ui.Page)
		r.Mount(ui.BasePath(), ui.Routes())
	})

	server := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return registry.Listen(ctx)
	})
	g.Go(func() error {
		return server.Run(ctx, r)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
