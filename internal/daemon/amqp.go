package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/theirongolddev/tally/internal/logger"
)

// AMQPPublisher sends daemon events to a durable direct exchange. A broken
// connection is redialed on the next publish.
type AMQPPublisher struct {
	url      string
	exchange string
	queue    string
	log      *zap.SugaredLogger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher dials url and declares the exchange, queue and binding.
func NewAMQPPublisher(url, exchange, queue string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		url:      url,
		exchange: exchange,
		queue:    queue,
		log:      logger.Named("amqp"),
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, p.exchange, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	p.conn, p.channel = conn, ch
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// Routing key is the queue name.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		p.log.Infow("reconnecting to broker", "exchange", p.exchange)
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ev.Timestamp,
		MessageId:    fmt.Sprintf("%d", ev.ID),
		Type:         ev.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.log.Debugw("published event", "id", ev.ID, "type", ev.Type, "exchange", p.exchange, "queue", p.queue)
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
