package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Matching MatchingConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=matching_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// MatchingConfig holds every timing knob of the coordination engine. The
// defaults mirror the product values; all of them are env-tunable because
// the right vote window and guardian ceiling are still being argued over.
type MatchingConfig struct {
	VoteWindow         time.Duration `env:"MATCH_VOTE_WINDOW,         default=10s"`
	SweepInterval      time.Duration `env:"MATCH_SWEEP_INTERVAL,      default=10s"`
	GuardianCeiling    time.Duration `env:"MATCH_GUARDIAN_CEILING,    default=20s"`
	HeartbeatTTL       time.Duration `env:"MATCH_HEARTBEAT_TTL,       default=30s"`
	DisconnectCooldown time.Duration `env:"MATCH_DISCONNECT_COOLDOWN, default=60s"`
	PairRetries        int           `env:"MATCH_PAIR_RETRIES,        default=3"`
	PairBackoff        time.Duration `env:"MATCH_PAIR_BACKOFF,        default=5ms"`
	NotifyWorkers      int           `env:"MATCH_NOTIFY_WORKERS,      default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
