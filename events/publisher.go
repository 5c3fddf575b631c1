package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits domain events for external collaborators. The core never
// depends on a broker being reachable: publishing happens off-request and
// failures are logged, not surfaced.
type Publisher interface {
	Publish(ctx context.Context, evt Envelope) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url string, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange[%s]: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, evt Envelope) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling %s event: %w", evt.Type, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   evt.ID,
		Timestamp:   evt.OccurredAt,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", evt.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NopPublisher discards events. It backs tests and deployments without a
// broker.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, evt Envelope) error { return nil }

func (NopPublisher) Close() error { return nil }
