package config

import "github.com/kelseyhightower/envconfig"

type Config struct {
	HTTPAddr      string   `envconfig:"HTTP_ADDR" default:":8081"`
	RedisAddr     string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	PostgresDSN   string   `envconfig:"POSTGRES_DSN"`
	KafkaBrokers  []string `envconfig:"KAFKA_BROKERS"`
	CatalogPath   string   `envconfig:"CATALOG_PATH" default:"assets/products.json"`
	UsersSeedPath string   `envconfig:"USERS_SEED_PATH" default:"assets/users.json"`
	ServiceName   string   `envconfig:"SERVICE_NAME" default:"farmstarter-api"`
	LogLevel      string   `envconfig:"LOG_LEVEL" default:"info"`

	ActivityGroup   string `envconfig:"ACTIVITY_GROUP" default:"activity-svc"`
	ActivityWorkers int    `envconfig:"ACTIVITY_WORKERS" default:"4"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
