package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	BackupRedis  = "redis"
	BackupSQLite = "sqlite"

	OrdersHTTP  = "http"
	OrdersKafka = "kafka"
)

type Config struct {
	Env                 string        `mapstructure:"APP_ENV"`
	HTTPPort            string        `mapstructure:"HTTP_PORT"`
	BackendBaseURL      string        `mapstructure:"BACKEND_BASE_URL"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout     time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	MerchantDisplayName string        `mapstructure:"MERCHANT_DISPLAY_NAME"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`

	BackupDriver  string `mapstructure:"BACKUP_DRIVER"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	OrderTransport   string   `mapstructure:"ORDER_TRANSPORT"`
	KafkaBrokers     []string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrdersTopic string   `mapstructure:"KAFKA_ORDERS_TOPIC"`

	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerOpenTimeout time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`
}

var defaults = map[string]any{
	"APP_ENV":               "development",
	"HTTP_PORT":             "8080",
	"BACKEND_BASE_URL":      "http://localhost:3000",
	"REQUEST_TIMEOUT":       "5s",
	"SHUTDOWN_TIMEOUT":      "10s",
	"MERCHANT_DISPLAY_NAME": "Munchix",
	"SESSION_TTL":           "15m",
	"BACKUP_DRIVER":         BackupSQLite,
	"SQLITE_PATH":           "storefront.db",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"ORDER_TRANSPORT":       OrdersHTTP,
	"KAFKA_BROKERS":         "localhost:9092",
	"KAFKA_ORDERS_TOPIC":    "orders",
	"BREAKER_MAX_FAILURES":  5,
	"BREAKER_OPEN_TIMEOUT":  "30s",
}

// Load reads the configuration from the environment. When CONFIG_FILE points
// to a file (.env, yaml, json...) its values are read first and environment
// variables still win.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.BackupDriver {
	case BackupRedis, BackupSQLite:
	default:
		return fmt.Errorf("invalid BACKUP_DRIVER %q: want %s or %s", c.BackupDriver, BackupRedis, BackupSQLite)
	}
	switch c.OrderTransport {
	case OrdersHTTP, OrdersKafka:
	default:
		return fmt.Errorf("invalid ORDER_TRANSPORT %q: want %s or %s", c.OrderTransport, OrdersHTTP, OrdersKafka)
	}
	if c.OrderTransport == OrdersKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("ORDER_TRANSPORT=kafka requires KAFKA_BROKERS")
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
