package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/config"
	"github.com/octabyte/alumni-portal/db/redis"
	"github.com/octabyte/alumni-portal/events"
	"github.com/octabyte/alumni-portal/otel"
	"github.com/octabyte/alumni-portal/otel/metrics"
	"github.com/octabyte/alumni-portal/portal"
	"github.com/octabyte/alumni-portal/queue"
	"github.com/octabyte/alumni-portal/storage"
	"github.com/octabyte/alumni-portal/utils/logger"
)

const startupTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("PORTAL_CONFIG"), "path to a YAML, TOML or JSON config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(&logger.Config{Level: cfg.Log.Level, Env: cfg.Log.Env, ServiceName: cfg.Service.Name}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := otel.InitOpenTelemetry(ctx, otel.OtelConfig{
		Enabled:        cfg.Otel.Enabled,
		Endpoint:       cfg.Otel.Endpoint,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Log.Env,
		SampleRate:     cfg.Otel.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init opentelemetry: %w", err)
	}
	defer shutdownOtel()
	if cfg.Otel.Enabled {
		if err := metrics.Init(cfg.Service.Name); err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	rdb, err := redis.NewRedisClient(startCtx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	cancel()
	if err != nil {
		return err
	}
	defer rdb.Close()

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()

	httpClient := api.NewHTTPClient(cfg.API.Timeout)
	server, err := portal.NewServer(portal.Config{
		ServiceName:  cfg.Service.Name,
		CookieName:   cfg.Server.CookieName,
		CookieSecure: cfg.Server.CookieSecure,
		CookieMaxAge: cfg.Session.TTL,
		Timezone:     cfg.Server.Timezone,
		LogLevel:     cfg.Log.Level,
		Tracing:      cfg.Otel.Enabled,
		Backend: storage.NewRedisBackend(rdb, storage.RedisConfig{
			KeyPrefix:     cfg.Session.KeyPrefix,
			TTL:           cfg.Session.TTL,
			SubmitLockTTL: cfg.Session.SubmitLockTTL,
		}),
		NewClient: func() (*api.Client, error) {
			return api.New(api.Config{BaseURL: cfg.API.BaseURL, ServiceName: cfg.Service.Name, HTTPClient: httpClient})
		},
		Notifier: notifier,
		Health: func(ctx context.Context) error {
			return redis.Ping(ctx, rdb)
		},
	})
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.LogInfo("portal listening", zap.String("addr", cfg.Server.Addr), zap.String("api", cfg.API.BaseURL))
		serveErr <- server.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.LogInfo("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newNotifier builds the session event sinks that are configured. With none,
// events are dropped.
func newNotifier(cfg *config.Config) (events.Notifier, func(), error) {
	var (
		sinks   events.Fanout
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.AMQP.URI != "" {
		conn, err := queue.NewConnection(queue.ConnectionConfig{
			URI: cfg.AMQP.URI,
			ExchangeConfig: &queue.ExchangeConfig{
				Name:    cfg.AMQP.Exchange,
				Kind:    amqp.ExchangeTopic,
				Durable: true,
			},
		})
		if err != nil {
			return nil, closeAll, err
		}
		publisher := conn.Publisher(queue.PublishConfig{
			Exchange:     cfg.AMQP.Exchange,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
		})
		closers = append(closers, func() {
			if err := conn.Close(); err != nil {
				logger.LogWarn("close amqp connection", zap.Error(err))
			}
		})
		sinks = append(sinks, events.NewAMQPNotifier(publisher))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaNotifier(events.NewKafkaWriter(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}))
		closers = append(closers, func() {
			if err := kafka.Close(); err != nil {
				logger.LogWarn("close kafka writer", zap.Error(err))
			}
		})
		sinks = append(sinks, kafka)
	}

	switch len(sinks) {
	case 0:
		return events.NopNotifier{}, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return sinks, closeAll, nil
	}
}
