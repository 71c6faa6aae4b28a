package target

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config comes from the environment, matching the deployment manifests.
type Config struct {
	Port int `envconfig:"PORT" default:"5000"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"cloudapp"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`

	// MemoryStore skips Postgres entirely, for local demo runs.
	MemoryStore bool `envconfig:"MEMORY_STORE" default:"false"`
}

func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("load target config: %w", err)
	}
	return c, nil
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
