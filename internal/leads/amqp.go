package leads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// RoutingKey is the key leads are published under.
const RoutingKey = "lead.captured"

// Publisher is the part of *amqp.Channel the sink needs.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes leads as JSON to a RabbitMQ exchange.
type AMQPSink struct {
	publisher Publisher
	exchange  string
	closeFn   func() error
}

// NewAMQPSink wraps an existing publisher.
func NewAMQPSink(publisher Publisher, exchange string) *AMQPSink {
	return &AMQPSink{publisher: publisher, exchange: exchange}
}

// DialAMQP connects to RabbitMQ, declares a durable topic exchange and returns a sink
// publishing to it. Close releases the connection.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	sink := NewAMQPSink(ch, exchange)
	sink.closeFn = func() error {
		ch.Close()
		return conn.Close()
	}
	return sink, nil
}

// Deliver publishes the lead.
func (s *AMQPSink) Deliver(ctx context.Context, lead Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}
	err = s.publisher.Publish(s.exchange, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    lead.ID.String(),
		Timestamp:    lead.CapturedAt,
		Body:         body,
	})
	if err != nil {
		return &DeliveryError{Sink: "amqp", Cause: err}
	}
	return nil
}

// Close releases the underlying connection, if the sink owns one.
func (s *AMQPSink) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
