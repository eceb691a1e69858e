package httpserver

import "time"

// Config is the ops listener configuration of notifyd.
type Config struct {
	Addr            string        `env:"HEALTH_ADDR" envDefault:":8081"`
	ReadTimeout     time.Duration `env:"HEALTH_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HEALTH_WRITE_TIMEOUT" envDefault:"2m"`
	IdleTimeout     time.Duration `env:"HEALTH_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HEALTH_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	// ProbeTimeout bounds each readiness probe.
	ProbeTimeout time.Duration `env:"HEALTH_PROBE_TIMEOUT" envDefault:"2s"`
}

// NewFromConfig creates a new Server from the provided Config.
// Only non-zero values from the config are applied.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5)

	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	return New(append(configOpts, opts...)...)
}
