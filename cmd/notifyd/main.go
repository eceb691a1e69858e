// Command notifyd runs the notification sweeps: it delivers pending
// notifications and retries failed ones on an interval until it receives
// SIGINT or SIGTERM. An ops listener serves /healthz, /readyz and POST /sweep.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/riskhub/notify/pkg/config"
	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/httpserver"
	"github.com/riskhub/notify/pkg/logger"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"SERVICE_NAME" envDefault:"notifyd"`
	// Migrate applies the embedded schema migrations at startup.
	Migrate bool `env:"NOTIFY_MIGRATE" envDefault:"true"`
	// UsersDatabaseURL points at the platform database holding the users
	// table. Empty means the notification database.
	UsersDatabaseURL string `env:"USERS_DATABASE_URL"`
	UsersQuery       string `env:"USERS_QUERY"`
	// RedisEnabled guards sweeps with a Redis lease. Disable it only when a
	// single notifyd runs.
	RedisEnabled bool `env:"REDIS_ENABLED" envDefault:"true"`
}

func main() {
	check := flag.Bool("check", false, "ping the dependencies and exit")
	envFile := flag.String("env-file", "", "load variables from this .env file first")
	flag.Parse()

	if *envFile != "" {
		if err := config.LoadEnv(*envFile); err != nil {
			slog.Error("failed to load env file", logger.Error(err))
			os.Exit(1)
		}
	}

	var app appConfig
	if err := config.Load(&app); err != nil {
		slog.Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}

	log := logger.New(logger.WithEnvironment(app.Env, app.Service))
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, *check, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "notifyd stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, check bool, log *slog.Logger) error {
	deps, err := connect(ctx, app, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	if check {
		return deps.Check(ctx, log)
	}

	manager, err := newManager(app, deps, log)
	if err != nil {
		return err
	}
	sweeper, err := newSweeper(manager, deps, log)
	if err != nil {
		return err
	}

	var opsCfg httpserver.Config
	if err := config.Load(&opsCfg); err != nil {
		return err
	}
	ops := httpserver.NewFromConfig(opsCfg, httpserver.WithLogger(log.With(logger.Component("ops"))))
	router := httpserver.NewRouter(httpserver.RouterOptions{
		Logger:       log.With(logger.Component("ops")),
		Probes:       deps.probes,
		ProbeTimeout: opsCfg.ProbeTimeout,
		Sweep:        sweeper.RunOnce,
		IgnoreSweepError: func(err error) bool {
			return errors.Is(err, delivery.ErrLockNotHeld) || errors.Is(err, delivery.ErrSweepRunning)
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(sweeper.Run(gctx))
	g.Go(ops.RunFunc(gctx, router))

	log.LogAttrs(ctx, slog.LevelInfo, "notifyd started")
	if err := g.Wait(); err != nil {
		return err
	}
	log.LogAttrs(ctx, slog.LevelInfo, "notifyd stopped")
	return nil
}
