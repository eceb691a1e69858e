package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/riskhub/notify/pkg/config"
	"github.com/riskhub/notify/pkg/httpserver"
	"github.com/riskhub/notify/pkg/logger"
	"github.com/riskhub/notify/pkg/pg"
	"github.com/riskhub/notify/pkg/pgstore"
	"github.com/riskhub/notify/pkg/redis"
)

// dependencies are the external connections of the process.
type dependencies struct {
	pool     *pgxpool.Pool
	usersDB  *sqlx.DB
	redis    *goredis.Client
	redisCfg redis.Config
	probes   map[string]httpserver.Probe
}

func connect(ctx context.Context, app appConfig, log *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{probes: make(map[string]httpserver.Probe)}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}

	deps.pool, err = pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, err
	}
	deps.probes["postgres"] = pg.Healthcheck(deps.pool)

	if app.Migrate {
		if err := pg.Migrate(ctx, deps.pool, pgCfg, pgstore.Migrations(), log.With(logger.Component("migrate"))); err != nil {
			return nil, err
		}
	}

	// The pgx stdlib driver is registered as "pgx".
	if app.UsersDatabaseURL != "" {
		deps.usersDB, err = sqlx.ConnectContext(ctx, "pgx", app.UsersDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect users database: %w", err)
		}
		deps.probes["users"] = deps.usersDB.PingContext
	} else {
		deps.usersDB = sqlx.NewDb(stdlib.OpenDBFromPool(deps.pool), "pgx")
	}

	if app.RedisEnabled {
		if err := config.Load(&deps.redisCfg); err != nil {
			return nil, fmt.Errorf("redis config: %w", err)
		}
		deps.redis, err = redis.Connect(ctx, deps.redisCfg)
		if err != nil {
			return nil, err
		}
		deps.probes["redis"] = redis.Healthcheck(deps.redis)
	}

	return deps, nil
}

// Check runs every probe and reports all failures.
func (d *dependencies) Check(ctx context.Context, log *slog.Logger) error {
	var errs []error
	for name, probe := range d.probes {
		if err := probe(ctx); err != nil {
			log.LogAttrs(ctx, slog.LevelError, "dependency unhealthy", logger.Component(name), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.LogAttrs(ctx, slog.LevelInfo, "dependency healthy", logger.Component(name))
	}
	return errors.Join(errs...)
}

func (d *dependencies) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.usersDB != nil {
		_ = d.usersDB.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
