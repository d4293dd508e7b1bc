// Package config loads typed configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` (optional .env files) and
// `github.com/caarlos0/env/v11` (struct tag parsing). Every package in this
// module that needs settings declares a Config struct with `env` tags next to
// the code that consumes it; binaries load those structs through Load.
//
// # Usage
//
//	var cfg webhook.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Same struct, different variable names: reads EU_WEBHOOK_REGISTRY_URL etc.
//	var eu webhook.Config
//	config.MustLoad(&eu, config.WithPrefix("EU_"))
//
// The first successful parse per type and prefix is cached for the lifetime of
// the process; ResetCache clears it. Variables already present in the
// environment always win over values from .env files.
package config
