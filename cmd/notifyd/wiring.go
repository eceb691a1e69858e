package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/riskhub/notify/pkg/config"
	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/email"
	"github.com/riskhub/notify/pkg/pgstore"
	"github.com/riskhub/notify/pkg/redis"
	"github.com/riskhub/notify/pkg/templates"
)

func newManager(app appConfig, deps *dependencies, log *slog.Logger) (*delivery.Manager, error) {
	var cfg delivery.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("delivery config: %w", err)
	}
	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return nil, fmt.Errorf("email config: %w", err)
	}

	sender, err := email.NewSender(emailCfg)
	if err != nil {
		return nil, err
	}

	renderer, loc, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	supportEmail := cfg.SupportEmail
	if supportEmail == "" {
		supportEmail = emailCfg.SupportEmail
	}

	var userOpts []pgstore.UserStoreOption
	if app.UsersQuery != "" {
		userOpts = append(userOpts, pgstore.WithUserQuery(app.UsersQuery))
	}
	var users delivery.UserLookup = pgstore.NewUserStore(deps.usersDB, userOpts...)
	if cfg.UserCacheSize > 0 {
		users = delivery.NewCachedUsers(users, cfg.UserCacheSize, cfg.UserCacheTTL)
	}

	return delivery.NewManager(
		pgstore.NewNotificationStore(deps.pool),
		pgstore.NewPreferenceStore(deps.pool),
		users,
		sender,
		delivery.WithConfig(cfg),
		delivery.WithRenderer(renderer),
		delivery.WithLocation(loc),
		delivery.WithSupportEmail(supportEmail),
		delivery.WithLogger(log),
	), nil
}

func newRenderer(cfg delivery.Config) (*templates.Renderer, *time.Location, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	tag, err := cfg.LanguageTag()
	if err != nil {
		return nil, nil, err
	}

	opts := []templates.Option{
		templates.WithLanguage(tag),
		templates.WithLocation(loc),
	}
	if cfg.TemplatesFile != "" {
		catalog, err := templates.LoadCatalog(cfg.TemplatesFile)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, templates.WithCatalog(catalog))
	}
	return templates.NewRenderer(opts...), loc, nil
}

func newSweeper(manager *delivery.Manager, deps *dependencies, log *slog.Logger) (*delivery.Sweeper, error) {
	var cfg delivery.Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("delivery config: %w", err)
	}

	opts := []delivery.SweeperOption{
		delivery.WithSweepInterval(cfg.SweepInterval),
		delivery.WithSweeperLogger(log),
	}
	if deps.redis != nil {
		lock, err := redis.NewLockFromConfig(deps.redis, deps.redisCfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, delivery.WithLocker(lock))
	}
	return delivery.NewSweeper(manager, opts...), nil
}
