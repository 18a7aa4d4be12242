package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/utils"
	"github.com/octabyte/alumni-portal/utils/logger"
)

// Events are written one per request; a batch is flushed after this long.
const batchTimeout = 10 * time.Millisecond

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	MaxRetries int
}

// MessageWriter is the part of *kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes each event to one topic, keyed by username so a
// user's events stay ordered within a partition.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            attempts,
		BatchTimeout:           batchTimeout,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
}

func NewKafkaNotifier(w MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	body, err := utils.StructToBytes(ev)
	if err != nil {
		logger.LogError("encode session event", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(ev.Username),
		Value: body,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		logger.LogWarn("write session event",
			zap.String("type", string(ev.Type)),
			zap.String("username", ev.Username),
			zap.Error(err),
		)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Fanout delivers every event to each notifier in turn.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	for _, n := range f {
		n.Notify(ctx, ev)
	}
}
