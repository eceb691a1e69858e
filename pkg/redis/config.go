package redis

import "time"

// Config holds the client and sweep lock settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	LockKey string        `env:"REDIS_SWEEP_LOCK_KEY" envDefault:"notify:sweep:lock"`
	LockTTL time.Duration `env:"REDIS_SWEEP_LOCK_TTL" envDefault:"5m"` // must outlast one sweep
}
