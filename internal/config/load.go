package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendInmem    = "inmem"
	BackendPostgres = "postgres"
	BackendRabbitMQ = "rabbitmq"
	BackendCKAN     = "ckan"
)

// Load читает .env (если есть) и переменные окружения.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось загрузить .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendInmem:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL обязателен для STORE_BACKEND=postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: неизвестный STORE_BACKEND %q", ErrInvalidConfig, c.StoreBackend)
	}

	switch c.DispatchBackend {
	case BackendInmem, BackendRabbitMQ:
	default:
		return fmt.Errorf("%w: неизвестный DISPATCH_BACKEND %q", ErrInvalidConfig, c.DispatchBackend)
	}

	switch c.CatalogBackend {
	case BackendInmem, BackendCKAN:
	default:
		return fmt.Errorf("%w: неизвестный CATALOG_BACKEND %q", ErrInvalidConfig, c.CatalogBackend)
	}

	switch c.ClassifierMode {
	case "conservative", "selective":
	default:
		return fmt.Errorf("%w: неизвестный CLASSIFIER_MODE %q", ErrInvalidConfig, c.ClassifierMode)
	}

	if c.ClaimTTL <= 0 {
		return fmt.Errorf("%w: CLAIM_TTL должен быть больше нуля", ErrInvalidConfig)
	}
	return nil
}

var ErrInvalidConfig = errors.New("некорректная конфигурация")
