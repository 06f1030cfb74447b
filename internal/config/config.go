package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// Settlement behaviour. The commit budget bounds the window between
	// the pending row being written and the debit-and-enroll transaction
	// committing; past it the attempt is marked failed and the client may
	// retry with the same derived idempotency key.
	RegisterTimeout    time.Duration `env:"REGISTER_TIMEOUT" envDefault:"10s"`
	DebitMaxRetries    int           `env:"DEBIT_MAX_RETRIES" envDefault:"3"`
	RecoveryPendingAge time.Duration `env:"RECOVERY_PENDING_AGE" envDefault:"10m"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
