// Package amqp publishes ledger events to a RabbitMQ exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mmynk/splitledger/internal/events"
)

var _ events.Publisher = (*Publisher)(nil)

// Publisher sends each ledger event as a persistent JSON message.
type Publisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
}

// NewPublisher dials the broker and declares a durable topic exchange.
func NewPublisher(url, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Publish sends ev to the exchange. The routing key is "<routingKey>.<kind>".
func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	msg, err := NewMessage(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,                        // exchange
		RoutingKey(p.routingKey, ev.Kind), // routing key
		false,                             // mandatory
		false,                             // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Kind, err)
	}

	slog.DebugContext(ctx, "Published ledger event",
		"kind", ev.Kind,
		"group_id", ev.GroupID,
		"exchange", p.exchange,
	)
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// RoutingKey returns the routing key used for events of the given kind.
func RoutingKey(base string, kind events.Kind) string {
	if base == "" {
		return string(kind)
	}
	return base + "." + string(kind)
}

// NewMessage builds the AMQP publishing for an event.
func NewMessage(ev events.Event) (amqp091.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ts,
		Type:         string(ev.Kind),
		Body:         body,
	}, nil
}

// decodeEvent parses a message body produced by Publish.
func decodeEvent(body []byte) (events.Event, error) {
	var ev events.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return events.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return ev, nil
}
