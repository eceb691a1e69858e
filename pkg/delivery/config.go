package delivery

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Config holds the orchestrator settings.
type Config struct {
	BatchSize     int           `env:"NOTIFY_BATCH_SIZE" envDefault:"50"`
	BatchPause    time.Duration `env:"NOTIFY_BATCH_PAUSE" envDefault:"1s"`
	DedupWindow   time.Duration `env:"NOTIFY_DEDUP_WINDOW" envDefault:"60m"`
	RetryBackoff  time.Duration `env:"NOTIFY_RETRY_BACKOFF" envDefault:"30s"`
	SweepInterval time.Duration `env:"NOTIFY_SWEEP_INTERVAL" envDefault:"1m"`
	Timezone      string        `env:"NOTIFY_TIMEZONE" envDefault:"UTC"`
	Language      string        `env:"NOTIFY_LANGUAGE" envDefault:"es"`
	// TemplatesFile optionally overrides the built-in template catalog.
	TemplatesFile string `env:"NOTIFY_TEMPLATES_FILE"`
	SupportEmail  string `env:"SUPPORT_EMAIL"`
	// UserCacheSize caps cached user lookups. Zero disables the cache.
	UserCacheSize int           `env:"NOTIFY_USER_CACHE_SIZE" envDefault:"1024"`
	UserCacheTTL  time.Duration `env:"NOTIFY_USER_CACHE_TTL" envDefault:"5m"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		BatchSize:     50,
		BatchPause:    time.Second,
		DedupWindow:   60 * time.Minute,
		RetryBackoff:  30 * time.Second,
		SweepInterval: time.Minute,
		Timezone:      "UTC",
		Language:      "es",
		UserCacheSize: 1024,
		UserCacheTTL:  5 * time.Minute,
	}
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// LanguageTag resolves Language.
func (c Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("%w: language %q: %w", ErrInvalidConfig, c.Language, err)
	}
	return tag, nil
}
