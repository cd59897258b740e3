package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher публикует события в RabbitMQ. Соединение открывается лениво
// и переоткрывается после ошибки.
type Publisher struct {
	url    string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// PublishSlotEvent отправляет событие в очередь slot.events
func (p *Publisher) PublishSlotEvent(ctx context.Context, event SlotEvent) error {
	return p.publish(ctx, SlotEventsQueue, event)
}

// PublishReminder отправляет напоминание в очередь slot.reminders
func (p *Publisher) PublishReminder(ctx context.Context, reminder SessionReminder) error {
	return p.publish(ctx, RemindersQueue, reminder)
}

func (p *Publisher) publish(ctx context.Context, queueName string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	return nil
}

// channel возвращает открытый канал, объявляя очереди при подключении
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	for _, name := range []string{SlotEventsQueue, RemindersQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	p.conn, p.ch = conn, ch
	p.logger.Info("Connected to RabbitMQ")
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close закрывает соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// NopPublisher ничего не публикует (брокер не настроен)
type NopPublisher struct{}

func (NopPublisher) PublishSlotEvent(context.Context, SlotEvent) error      { return nil }
func (NopPublisher) PublishReminder(context.Context, SessionReminder) error { return nil }
