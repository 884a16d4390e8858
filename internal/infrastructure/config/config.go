package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Scanner       ScannerConfig       `mapstructure:"scanner"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Auth          AuthConfig          `mapstructure:"auth"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SSLMode         string        `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    int           `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

type PaymentConfig struct {
	// MaxAttempts is the retry ceiling: once attempt_count reaches it, a
	// payment is permanently failed.
	MaxAttempts    int           `mapstructure:"max_attempts"`
	MaxAmountCents int64         `mapstructure:"max_amount_cents"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`
}

type WorkerConfig struct {
	BatchSize     int64         `mapstructure:"batch_size"`
	BlockDuration time.Duration `mapstructure:"block_duration"`
	ConsumerGroup string        `mapstructure:"consumer_group"`
}

type ScannerConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	BatchSize         int           `mapstructure:"batch_size"`
	ProcessingTimeout time.Duration `mapstructure:"processing_timeout"`
	PendingGrace      time.Duration `mapstructure:"pending_grace"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PAYFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/payflow")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "payflow")
	v.SetDefault("database.password", "payflow")
	v.SetDefault("database.database", "payflow")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	v.SetDefault("payment.max_attempts", 3)
	v.SetDefault("payment.max_amount_cents", 100_000_000) // 1,000,000.00
	v.SetDefault("payment.lock_ttl", "30s")
	v.SetDefault("payment.gateway_timeout", "10s")

	v.SetDefault("worker.batch_size", 10)
	v.SetDefault("worker.block_duration", "5s")
	v.SetDefault("worker.consumer_group", "payflow-workers")

	v.SetDefault("scanner.interval", "2m")
	v.SetDefault("scanner.batch_size", 50)
	v.SetDefault("scanner.processing_timeout", "10m")
	v.SetDefault("scanner.pending_grace", "5m")

	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("instance_id", "payflow-1")
}

func (c *Config) Validate() error {
	if c.Payment.MaxAttempts <= 0 {
		return fmt.Errorf("payment.max_attempts must be positive")
	}
	if c.Payment.MaxAmountCents <= 0 {
		return fmt.Errorf("payment.max_amount_cents must be positive")
	}
	if c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive")
	}
	if c.Scanner.BatchSize <= 0 {
		return fmt.Errorf("scanner.batch_size must be positive")
	}
	if c.Worker.ConsumerGroup == "" {
		return fmt.Errorf("worker.consumer_group cannot be empty")
	}
	return nil
}

// DatabaseDSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisAddr builds the Redis address.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
