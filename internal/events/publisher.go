// Package events publishes spending mutation events to an AMQP broker.
// Publishing is best effort: a broker outage never fails the mutation
// that triggered the event.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher emits spending mutation events.
type Publisher interface {
	PublishSpendingEvent(ctx context.Context, event SpendingEvent) error
	Close() error
}

const routingKey = "spending"

// amqpPublisher implements Publisher on a RabbitMQ connection.
type amqpPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
}

// NewAMQPPublisher dials the broker and declares a durable direct
// exchange for spending events.
func NewAMQPPublisher(url, exchangeName string) (Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &amqpPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}, nil
}

func (p *amqpPublisher) PublishSpendingEvent(ctx context.Context, event SpendingEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// nopPublisher drops events. Used when no broker is configured.
type nopPublisher struct{}

// NewNopPublisher returns a Publisher that discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishSpendingEvent(context.Context, SpendingEvent) error { return nil }
func (nopPublisher) Close() error                                              { return nil }
