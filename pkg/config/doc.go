// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tag parsing). Each configuration struct
// type is parsed once per process and served from an in-memory cache after
// that; ResetCache clears it for tests.
//
//	var cfg delivery.Config
//	config.MustLoad(&cfg)
package config
