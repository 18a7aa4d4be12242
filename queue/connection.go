package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultExchangeKind = amqp.ExchangeTopic

type Connection struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// NewConnection creates a new AMQP connection using the provided configuration.
func NewConnection(config ConnectionConfig) (*Connection, error) {
	conn, err := amqp.Dial(config.URI)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if ex := config.ExchangeConfig; ex != nil {
		kind := ex.Kind
		if kind == "" {
			kind = defaultExchangeKind
		}
		if err = ch.ExchangeDeclare(ex.Name, kind, ex.Durable, ex.AutoDelete, false, ex.NoWait, ex.Args); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("declare exchange %q: %w", ex.Name, err)
		}
	}

	return &Connection{conn, ch}, nil
}

// Publisher opens a publisher on the connection's channel.
func (c *Connection) Publisher(config PublishConfig) Publisher {
	return NewPublisher(c.Ch, config)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
