package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const storyEventsExchangeType = "topic"

// publishChannel часть *amqp.Channel, нужная издателю.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQStoryEventPublisher публикует события историй в topic exchange.
// Routing key совпадает с типом события (story.generated, story.music_ready).
type RabbitMQStoryEventPublisher struct {
	ch       publishChannel
	exchange string
	logger   *zap.Logger
}

var _ interfaces.StoryEventPublisher = (*RabbitMQStoryEventPublisher)(nil)

// NewRabbitMQStoryEventPublisher открывает канал и объявляет durable exchange.
func NewRabbitMQStoryEventPublisher(conn *amqp.Connection, exchange string, logger *zap.Logger) (*RabbitMQStoryEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		storyEventsExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}
	logger.Info("Story events exchange declared", zap.String("exchange", exchange), zap.String("type", storyEventsExchangeType))
	return newStoryEventPublisher(ch, exchange, logger), nil
}

func newStoryEventPublisher(ch publishChannel, exchange string, logger *zap.Logger) *RabbitMQStoryEventPublisher {
	return &RabbitMQStoryEventPublisher{ch: ch, exchange: exchange, logger: logger.Named("StoryEventPublisher")}
}

// PublishStoryEvent сериализует событие в JSON и публикует его.
func (p *RabbitMQStoryEventPublisher) PublishStoryEvent(ctx context.Context, event models.StoryEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal story event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish story event", zap.String("type", event.Type), zap.Stringer("storyID", event.StoryID), zap.Error(err))
		return fmt.Errorf("failed to publish story event: %w", err)
	}
	p.logger.Debug("Story event published", zap.String("type", event.Type), zap.Stringer("storyID", event.StoryID))
	return nil
}

// Close закрывает канал.
func (p *RabbitMQStoryEventPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NoopStoryEventPublisher используется, когда брокер не настроен.
type NoopStoryEventPublisher struct{}

var _ interfaces.StoryEventPublisher = NoopStoryEventPublisher{}

func (NoopStoryEventPublisher) PublishStoryEvent(context.Context, models.StoryEvent) error {
	return nil
}
