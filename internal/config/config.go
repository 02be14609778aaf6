package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Gateway backends
const (
	GatewaySSE  = "sse"
	GatewayNATS = "nats"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type string `mapstructure:"type"`

	RedisURL      string `mapstructure:"redis_url"`
	RedisPoolSize int    `mapstructure:"redis_pool_size"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// GatewayConfig selects and configures the broadcast gateway
type GatewayConfig struct {
	Type string `mapstructure:"type"`

	NATSURL           string        `mapstructure:"nats_url"`
	NATSMaxReconnects int           `mapstructure:"nats_max_reconnects"`
	NATSReconnectWait time.Duration `mapstructure:"nats_reconnect_wait"`
}

// WordsConfig configures category loading
type WordsConfig struct {
	// Dir holds one .txt file per category, one word per line
	Dir string `mapstructure:"dir"`
}

// Config is the full application configuration
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Storage  StorageConfig `mapstructure:"storage"`
	Gateway  GatewayConfig `mapstructure:"gateway"`
	Words    WordsConfig   `mapstructure:"words"`
	LogLevel string        `mapstructure:"log_level"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the EMOJIGUESS_ prefix with underscores, e.g.
// EMOJIGUESS_STORAGE_TYPE=redis.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.type", StorageMemory)
	v.SetDefault("storage.redis_url", "redis://localhost:6379")
	v.SetDefault("storage.redis_pool_size", 10)
	v.SetDefault("gateway.type", GatewaySSE)
	v.SetDefault("gateway.nats_url", "nats://localhost:4222")
	v.SetDefault("gateway.nats_max_reconnects", -1)
	v.SetDefault("gateway.nats_reconnect_wait", 2*time.Second)
	v.SetDefault("words.dir", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("EMOJIGUESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	switch c.Gateway.Type {
	case GatewaySSE, GatewayNATS:
	default:
		return fmt.Errorf("unknown gateway type %q", c.Gateway.Type)
	}

	return nil
}
