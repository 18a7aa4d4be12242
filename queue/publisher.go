package queue

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	// Publish sends body with the given routing key. An empty key falls back
	// to the configured default.
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

type publisher struct {
	// amqp channels are not safe for concurrent publishing.
	mu     sync.Mutex
	ch     *amqp.Channel
	config PublishConfig
}

func NewPublisher(ch *amqp.Channel, config PublishConfig) Publisher {
	return &publisher{ch: ch, config: config}
}

// Publish publishes a message to the configured exchange.
func (p *publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if routingKey == "" {
		routingKey = p.config.RoutingKey
	}

	message := amqp.Publishing{
		ContentType:  p.config.ContentType,
		Body:         body,
		DeliveryMode: p.config.DeliveryMode,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(
		ctx,               // context
		p.config.Exchange, // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		message,
	)
}

// Close closes the publisher, releasing any resources it holds.
func (p *publisher) Close() error {
	return p.ch.Close()
}
