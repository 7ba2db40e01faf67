package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/pillbox/internal/database"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pillbox"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite3"`
		Path     string `envconfig:"DB_PATH" default:"pillbox.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pillbox"`
	}

	Log struct {
		File  string `envconfig:"LOG_FILE" default:""`
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}

	Alerts struct {
		Schedule string `envconfig:"ALERT_SCHEDULE" default:"@daily"`
		Days     int    `envconfig:"ALERT_DAYS" default:"7"`
	}
}

// ConnectionString returns the DSN for the configured driver.
func (c *Config) ConnectionString() string {
	if c.DB.Driver == database.DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
	}

	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.DB.Path)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.DB.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return &cfg, nil
}
