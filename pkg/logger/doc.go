// Package logger builds *slog.Logger instances for the notification engine
// and provides attribute helpers so every component logs the same keys.
//
// New returns a logger whose handler is wrapped by LogHandlerDecorator, which
// runs registered ContextExtractor callbacks on each record. Presets for
// development, staging and production are applied with WithEnvironment.
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "notifyd"))
//	log.LogAttrs(ctx, slog.LevelWarn, "delivery failed",
//	    logger.NotificationID(n.ID),
//	    logger.Channel(n.Channel),
//	    logger.Error(err),
//	)
package logger
