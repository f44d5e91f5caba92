package config

import (
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/sariqmarket/b2b-backend/internal/model"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"STORAGE_BUCKET"`
	CredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// EnrichWorkers bounds the fan-out of offer/user lookups during
	// transaction enrichment.
	EnrichWorkers int `env:"ENRICH_WORKERS" envDefault:"8"`

	// TransitionMode is "permissive" or "strict"; see model.TransitionMode.
	TransitionMode string `env:"TRANSITION_MODE" envDefault:"permissive"`

	OpTimeout time.Duration `env:"OP_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Mode() model.TransitionMode {
	if c.TransitionMode == string(model.TransitionModeStrict) {
		return model.TransitionModeStrict
	}
	return model.TransitionModePermissive
}
