// Package push publishes delivery signals to a message broker so external
// consumers (mobile push gateways, mail digests) can react to fan-outs
// without polling the database. The publisher is optional: when no broker
// is configured the app runs without it.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys on the topic exchange.
const (
	KeyAnnouncementDelivered = "announcement.delivered"
)

// DeliveryEvent is the message body published after a fan-out commits.
type DeliveryEvent struct {
	AnnouncementID string    `json:"announcement_id"`
	Recipients     int64     `json:"recipients"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishDelivery implements fanout.Publisher.
func (p *Publisher) PublishDelivery(ctx context.Context, announcementID string, recipients int64) error {
	return p.publishJSON(ctx, KeyAnnouncementDelivered, DeliveryEvent{
		AnnouncementID: announcementID,
		Recipients:     recipients,
		DeliveredAt:    time.Now().UTC(),
	})
}

func (p *Publisher) publishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
