// Package amqp relays domain events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application/relay"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeType = "topic"

// SetupConn dials url with a few retries and declares the durable topic exchange.
func SetupConn(url, exchange string, attempts int, log observability.Logger) (*amqp.Connection, *amqp.Channel, error) {
	if log == nil {
		log = observability.NopLogger()
	}
	if attempts <= 0 {
		attempts = 1
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn("amqp_dial_failed", observability.F("attempt", i+1), observability.F("error", err))
		if i+1 < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("amqp: connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}
	return conn, ch, nil
}

// Publisher sends relay messages with the event name as routing key, e.g. "order.placed".
type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

var _ relay.Sink = (*Publisher)(nil)

func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Name() string { return "amqp" }

func (p *Publisher) Send(ctx context.Context, msg relay.Message) error {
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		msg.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.Key,
			Timestamp:    time.Now().UTC(),
			Type:         msg.Name,
			Body:         msg.Body,
		},
	)
}
