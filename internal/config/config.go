package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих файл
const EnvPrefix = "BOOKING"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Tracing  TracingConfig  `toml:"tracing"`
	Redis    RedisConfig    `toml:"redis"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Travel   TravelConfig   `toml:"travel"`
	Booking  BookingConfig  `toml:"booking"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" envconfig:"HTTP_PORT"`
	ReadTimeout     int `toml:"read_timeout" envconfig:"READ_TIMEOUT"`         // секунды
	WriteTimeout    int `toml:"write_timeout" envconfig:"WRITE_TIMEOUT"`       // секунды
	IdleTimeout     int `toml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`         // секунды
	ShutdownTimeout int `toml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host" envconfig:"HOST"`
	Port            int    `toml:"port" envconfig:"PORT"`
	User            string `toml:"user" envconfig:"USER"`
	Password        string `toml:"password" envconfig:"PASSWORD"`
	DBName          string `toml:"dbname" envconfig:"NAME"`
	SSLMode         string `toml:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns    int    `toml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int    `toml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type LogsConfig struct {
	Level string `toml:"level" envconfig:"LEVEL"`
	File  string `toml:"file" envconfig:"FILE"` // пусто - stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" envconfig:"ENABLED"`
	Path        string `toml:"path" envconfig:"PATH"`
	ServiceName string `toml:"service_name" envconfig:"SERVICE_NAME"`
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled" envconfig:"ENABLED"`
	OTLPEndpoint string  `toml:"otlp_endpoint" envconfig:"OTLP_ENDPOINT"`
	SampleRatio  float64 `toml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

type RedisConfig struct {
	Addr       string `toml:"addr" envconfig:"ADDR"` // пусто - ограничение частоты выключено
	Password   string `toml:"password" envconfig:"PASSWORD"`
	DB         int    `toml:"db" envconfig:"DB"`
	RateLimit  int    `toml:"rate_limit" envconfig:"RATE_LIMIT"`   // запросов на тенанта за окно
	RateWindow int    `toml:"rate_window" envconfig:"RATE_WINDOW"` // секунды
	FailOpen   bool   `toml:"fail_open" envconfig:"FAIL_OPEN"`
}

type KafkaConfig struct {
	Brokers      string `toml:"brokers" envconfig:"BROKERS"` // через запятую; пусто - публикация выключена
	TopicPrefix  string `toml:"topic_prefix" envconfig:"TOPIC_PREFIX"`
	PollInterval int    `toml:"poll_interval_ms" envconfig:"POLL_INTERVAL_MS"`
	BatchSize    int    `toml:"batch_size" envconfig:"BATCH_SIZE"`
}

type TravelConfig struct {
	URL                    string `toml:"url" envconfig:"URL"` // пусто - поездка всегда нулевая
	Timeout                int    `toml:"timeout_ms" envconfig:"TIMEOUT_MS"`
	RecomputeClientFigures bool   `toml:"recompute_client_figures" envconfig:"RECOMPUTE_CLIENT_FIGURES"`
}

type BookingConfig struct {
	MaxAdvanceDays    int  `toml:"max_advance_days" envconfig:"MAX_ADVANCE_DAYS"` // 0 - без ограничения
	AutoAssignDefault bool `toml:"auto_assign_default" envconfig:"AUTO_ASSIGN_DEFAULT"`
}

// Load читает TOML-файл, применяет переменные окружения BOOKING_* и значения по умолчанию.
// Отсутствующий файл не ошибка: конфигурация берется из окружения.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Booking: BookingConfig{AutoAssignDefault: true},
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "booking-engine"
	}

	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1
	}

	if c.Redis.RateLimit == 0 {
		c.Redis.RateLimit = 30
	}
	if c.Redis.RateWindow == 0 {
		c.Redis.RateWindow = 60
	}

	if c.Kafka.TopicPrefix == "" {
		c.Kafka.TopicPrefix = "booking."
	}
	if c.Kafka.PollInterval == 0 {
		c.Kafka.PollInterval = 1000
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}

	if c.Travel.Timeout == 0 {
		c.Travel.Timeout = 2000
	}
}

// Validate отвергает значения, с которыми сервис не сможет работать
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535:
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	case c.Database.User == "" || c.Database.DBName == "":
		return fmt.Errorf("%w: database.user and database.dbname are required", ErrInvalidConfig)
	case c.Database.MaxIdleConns > c.Database.MaxOpenConns:
		return fmt.Errorf("%w: database.max_idle_conns exceeds max_open_conns", ErrInvalidConfig)
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return fmt.Errorf("%w: tracing.sample_ratio must be within [0, 1]", ErrInvalidConfig)
	case c.Tracing.Enabled && c.Tracing.OTLPEndpoint == "":
		return fmt.Errorf("%w: tracing.otlp_endpoint is required when tracing is enabled", ErrInvalidConfig)
	case c.Redis.RateLimit < 0 || c.Redis.RateWindow < 0:
		return fmt.Errorf("%w: redis rate limit values must not be negative", ErrInvalidConfig)
	case c.Kafka.BatchSize < 0 || c.Kafka.PollInterval < 0:
		return fmt.Errorf("%w: kafka poll interval and batch size must not be negative", ErrInvalidConfig)
	case c.Travel.Timeout < 0:
		return fmt.Errorf("%w: travel.timeout_ms must not be negative", ErrInvalidConfig)
	case c.Booking.MaxAdvanceDays < 0:
		return fmt.Errorf("%w: booking.max_advance_days must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c TravelConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

func (c KafkaConfig) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

func (c RedisConfig) Window() time.Duration {
	return time.Duration(c.RateWindow) * time.Second
}
