package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

// EventPublisher announces applied analysis results to downstream consumers
// (recommendation and notification workers). Publishing is best-effort; a
// failed publish never fails the reconciliation that triggered it.
type EventPublisher interface {
	PublishSubmissionAnalyzed(ctx context.Context, event *models.SubmissionAnalyzedEvent) error
	Close() error
}

type eventPublisher struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     zerolog.Logger
}

func NewEventPublisher(url, exchange, routingKey, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
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

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name, // queue name
		routingKey, // routing key
		exchange,   // exchange
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queue.Name).
		Str("routing_key", routingKey).
		Msg("Connected to RabbitMQ")

	return &eventPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (p *eventPublisher) PublishSubmissionAnalyzed(ctx context.Context, event *models.SubmissionAnalyzedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("status", event.Status).
		Int("topic_count", event.TopicCount).
		Msg("Submission analyzed event published")

	return nil
}

func (p *eventPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
