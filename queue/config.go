package queue

type ConnectionConfig struct {
	// URI: The RabbitMQ connection URI, which includes the address, port, and authentication credentials if necessary
	URI string
	// ExchangeConfig: The exchange declared on the connection's channel
	ExchangeConfig *ExchangeConfig
}

type ExchangeConfig struct {
	// Name: The name of the exchange to be declared.
	Name string
	// Kind: The exchange type, one of "direct", "fanout", "topic" or "headers".
	// Defaults to "topic".
	Kind string
	// Durable: Indicates whether the exchange survives a broker restart.
	Durable bool
	// AutoDelete: Indicates whether the exchange is deleted once no queue is bound to it.
	AutoDelete bool
	// NoWait: Indicates whether the declaration should not wait for a response from the server.
	NoWait bool
	// Args: Additional arguments to be used when declaring the exchange.
	Args map[string]interface{}
}

type PublishConfig struct {
	// Exchange: The name of the exchange to be used for message publishing.
	Exchange string
	// RoutingKey: The default routing key. Publish overrides it per message.
	RoutingKey string
	// ContentType: The content type of the message to be published.
	// The default value is "application/octet-stream".
	ContentType string
	// DeliveryMode: The delivery mode of the message to be published.
	// 1 = non-persistent
	// 2 = persistent
	DeliveryMode uint8
}

// See https://www.rabbitmq.com/tutorials/amqp-concepts-tutorial.html
