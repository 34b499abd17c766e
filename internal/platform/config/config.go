package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultSigningKey = "dev-secret-key-change-in-production"

// Config is the full process configuration, read from the environment.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Dataspace DataspaceConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `env:"VMS_ADDR" envDefault:":8080"`
	Environment     string        `env:"VMS_ENV" envDefault:"development"`
	ShutdownTimeout time.Duration `env:"VMS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"VMS_REQUEST_TIMEOUT" envDefault:"30s"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// DatabaseConfig configures PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the recent-activity cache. An empty URL disables it.
type RedisConfig struct {
	URL            string        `env:"REDIS_URL"`
	PoolSize       int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns   int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout    time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout    time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout   time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	RecentCapacity int           `env:"REDIS_RECENT_CAPACITY" envDefault:"500"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"vms"`
}

// KafkaConfig configures the activity stream mirror. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:","`
	ClientID          string        `env:"KAFKA_CLIENT_ID" envDefault:"vms"`
	Topic             string        `env:"KAFKA_ACTIVITY_TOPIC" envDefault:"vms.activity"`
	Linger            time.Duration `env:"KAFKA_LINGER" envDefault:"5ms"`
	Partitions        int32         `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16         `env:"KAFKA_TOPIC_REPLICATION" envDefault:"1"`
	BreakerThreshold  int           `env:"KAFKA_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown   time.Duration `env:"KAFKA_BREAKER_COOLDOWN" envDefault:"30s"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	SigningKey string        `env:"SESSION_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	Issuer     string        `env:"SESSION_ISSUER" envDefault:"vms"`
}

// DataspaceConfig toggles the optional federation behaviours.
type DataspaceConfig struct {
	BroadcastEnabled       bool   `env:"DATASPACE_BROADCAST" envDefault:"false"`
	StrictCertificateItems bool   `env:"CERTIFICATE_STRICT_ITEMS" envDefault:"false"`
	SeedFile               string `env:"SEED_FILE"`
	ImageDir               string `env:"EVENT_IMAGE_DIR"`
	ImageURLPrefix         string `env:"EVENT_IMAGE_URL_PREFIX" envDefault:"/static/images/events/"`
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations that are unsafe or unusable.
func (c Config) Validate() error {
	if c.IsProduction() && c.Auth.SigningKey == defaultSigningKey {
		return errors.New("SESSION_SIGNING_KEY must be set in production")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Redis.RecentCapacity <= 0 {
		return errors.New("REDIS_RECENT_CAPACITY must be positive")
	}
	return nil
}
