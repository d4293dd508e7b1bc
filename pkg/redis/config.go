package redis

import "time"

type Config struct {
	ConnectionURL   string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`   // ConnectionURL is the URL of the database. It should be in the format "redis://:password@localhost:6379/0"
	RetryAttempts   int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                        // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval   time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`                       // RetryInterval is the interval between retry attempts.
	ConnectTimeout  time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                     // ConnectTimeout bounds all connection attempts together.
	KeyPrefix       string        `env:"REDIS_KEY_PREFIX" envDefault:"trustkit:webhook:public_key:"` // KeyPrefix namespaces cached public keys.
	KeyTTL          time.Duration `env:"REDIS_KEY_TTL" envDefault:"24h"`                             // KeyTTL is how long a cached public key lives. Zero keeps keys forever.
	RateLimitPrefix string        `env:"REDIS_RATE_LIMIT_PREFIX" envDefault:"trustkit:ratelimit:"`   // RateLimitPrefix namespaces rate limit buckets.
}
