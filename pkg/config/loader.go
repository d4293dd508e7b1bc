package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option adjusts how a single Load call parses the environment.
type Option func(*loadOptions)

type loadOptions struct {
	prefix string
}

// WithPrefix prepends prefix to every env tag of the target struct, so
// `env:"DIGITS"` with prefix "TOTP_" reads TOTP_DIGITS. Configurations loaded
// with different prefixes are cached separately.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// configCache stores parsed configuration copies keyed by type and prefix.
type configCache struct {
	mu     sync.Mutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set. With no arguments it loads ./.env
// and treats a missing file as success.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v using `env` and `envDefault`
// struct tags. The first successful result for a given type and prefix is
// cached and returned by later calls; failures are not cached.
//
// Example:
//
//	type RegistryConfig struct {
//		BaseURL string        `env:"REGISTRY_URL,required"`
//		Timeout time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg RegistryConfig
//	if err := config.Load(&cfg); err != nil {
//		// errors.Is(err, config.ErrParsingConfig)
//	}
func Load[T any](v *T, opts ...Option) error {
	defaultEnvLoaded.Do(func() { _ = LoadEnv() })
	if v == nil {
		return ErrNilPointer
	}

	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	key := o.prefix + getTypeName[T]()

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Intended for process start-up where a missing setting is unrecoverable.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration. Tests use it to reparse after
// changing the environment.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
}

func getTypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
