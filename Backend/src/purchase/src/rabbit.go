package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Rabbit publishes to a topic exchange. A nil *Rabbit (no RABBITMQ_URL) is a
// valid publisher that drops every event.
type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbit(url, exchange string) (*Rabbit, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange}, nil
}

func (r *Rabbit) Close() {
	if r == nil {
		return
	}
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

func (r *Rabbit) PublishJSON(ctx context.Context, routingKey string, v any) error {
	if r == nil || r.ch == nil {
		return nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}
