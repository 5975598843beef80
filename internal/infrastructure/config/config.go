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

	Mongo   MongoConfig
	Redis   RedisConfig
	Library LibraryConfig
	Jobs    JobsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=smart_elib"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// LibraryConfig holds the lending policy. PenaltyRatePerDay and GraceDays are
// the single configured (rate, grace) pair every overdue computation uses.
type LibraryConfig struct {
	PenaltyRatePerDay int64         `env:"PENALTY_RATE_PER_DAY, default=50"`
	GraceDays         int           `env:"GRACE_DAYS,           default=4"`
	DefaultLoanDays   int           `env:"DEFAULT_LOAN_DAYS,    default=14"`
	IssueLockTTL      time.Duration `env:"ISSUE_LOCK_TTL,       default=5s"`
}

// JobsConfig holds the cron expressions for the scheduled reconciliations.
type JobsConfig struct {
	AvailabilitySync string `env:"SYNC_CRON,    default=0 0 * * *"`
	OverdueSweep     string `env:"OVERDUE_CRON, default=0 1 * * *"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
