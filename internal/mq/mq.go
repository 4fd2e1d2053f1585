package mq

import (
	"context"
	"encoding/json"
	"log"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

// Routing keys for ticket events.
const (
	EventTicketCreated       = "ticket.created"
	EventTicketStatusChanged = "ticket.status_changed"
)

// TicketEvent is the JSON body published for every ticket change.
type TicketEvent struct {
	Event      string `json:"event"`
	TicketID   uint   `json:"ticketId"`
	UserID     uint   `json:"userId"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	OccurredAt string `json:"occurredAt"`
}

// Publisher defines a minimal interface for publishing events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Consumer defines a minimal interface for subscribing to ticket events.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, TicketEvent) error) error
	Close() error
}

// RabbitPublisher publishes JSON events to a RabbitMQ exchange.
type RabbitPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewRabbitPublisher creates a publisher connecting to RabbitMQ.
func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish serializes the payload to JSON and sends it to the exchange.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close terminates the connection.
func (p *RabbitPublisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		log.Printf("close channel: %v", err)
	}
	return p.conn.Close()
}

// RabbitConsumer consumes ticket events from a queue bound to ticket.*.
type RabbitConsumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
}

// NewRabbitConsumer sets up queue bindings and returns a consumer.
func NewRabbitConsumer(url, exchange, queue string) (*RabbitConsumer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	if err := ch.QueueBind(q.Name, "ticket.*", exchange, false, nil); err != nil {
		conn.Close()
		return nil, errors.WithStack(err)
	}
	return &RabbitConsumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Consume delivers decoded events to handler until ctx is done or the
// delivery channel closes. Handled messages are acked; malformed ones are
// dropped and failed ones requeued once.
func (c *RabbitConsumer) Consume(ctx context.Context, handler func(context.Context, TicketEvent) error) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var event TicketEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				log.Printf("drop malformed event: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := handler(ctx, event); err != nil {
				log.Printf("handle %s for ticket %d failed: %v", event.Event, event.TicketID, err)
				_ = msg.Nack(false, !msg.Redelivered)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// Close closes the consumer resources.
func (c *RabbitConsumer) Close() error {
	if c == nil {
		return nil
	}
	if err := c.channel.Close(); err != nil {
		log.Printf("close channel: %v", err)
	}
	return c.conn.Close()
}
