package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "PORTAL"

type Config struct {
	Service ServiceConfig
	Server  ServerConfig
	API     APIConfig
	Redis   RedisConfig
	Session SessionConfig
	Log     LogConfig
	AMQP    AMQPConfig
	Kafka   KafkaConfig
	Otel    OtelConfig
}

type ServiceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr" validate:"required"`
	CookieName   string `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	// Timezone is used to display timestamps the API sends in UTC.
	Timezone        string        `mapstructure:"timezone"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	KeyPrefix     string        `mapstructure:"key_prefix" validate:"required"`
	SubmitLockTTL time.Duration `mapstructure:"submit_lock_ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error fatal panic"`
	Env   string `mapstructure:"env" validate:"required"`
}

// AMQPConfig enables publishing session events to RabbitMQ when URI is set.
type AMQPConfig struct {
	URI      string `mapstructure:"uri" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange" validate:"required_with=URI"`
}

// KafkaConfig enables publishing session events to Kafka when Brokers is set.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic" validate:"required_with=Brokers"`
}

type OtelConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "alumni-portal")
	v.SetDefault("service.version", "dev")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cookie_name", "portal_session")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.key_prefix", "portal:session:")
	v.SetDefault("session.submit_lock_ttl", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "production")
	v.SetDefault("amqp.uri", "")
	v.SetDefault("amqp.exchange", "portal.sessions")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "portal.sessions")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.sample_rate", 1.0)
}

// Load reads path when given, lets PORTAL_* environment variables override
// any key (PORTAL_API_BASE_URL for api.base_url) and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("invalid config: %w", invalid)
		}
		return nil, err
	}
	return &cfg, nil
}

// splitList accepts both YAML lists and a comma separated environment value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
