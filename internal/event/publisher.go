package event

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Publisher delivers domain events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}

// AMQPPublisher publishes JSON events to a durable topic exchange,
// using the event type as routing key
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	debug    bool

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
}

// NewAMQPPublisher connects to the broker and declares the exchange
func NewAMQPPublisher(amqpURL, exchange string, debug bool) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, debug: debug}, nil
}

// Publish sends one event
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	body, err := Encode(eventType, payload, now)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	if p.debug {
		log.Printf("[DEBUG] Publishing %s: %s", eventType, body)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NopPublisher drops every event; it is used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }
