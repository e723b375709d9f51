package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

const (
	ExchangeName  = "payments"
	QueueName     = "payment_verification"
	PrefetchCount = 1 // Process one message at a time per worker
)

// RabbitMQClient is a secondary adapter implementing the EventPublisher
// output port. Events are published with their type as routing key; the
// verification queue is bound to payment.created only.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// NewRabbitMQClient creates a new RabbitMQ client (returns interface for ports)
func NewRabbitMQClient(amqpURL string, log *zap.Logger) (output.EventPublisher, error) {
	return NewRabbitMQClientConcrete(amqpURL, log)
}

// NewRabbitMQClientConcrete creates a new RabbitMQ client (returns concrete type for workers)
func NewRabbitMQClientConcrete(amqpURL string, log *zap.Logger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		QueueName,
		output.EventPaymentCreated,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		log:     log.Named("messaging.rabbitmq"),
	}, nil
}

// PublishPaymentEvent publishes a payment event under its type routing key.
func (c *RabbitMQClient) PublishPaymentEvent(ctx context.Context, evt output.PaymentEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.PublishWithContext(
		ctx,
		ExchangeName,
		evt.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	c.log.Debug("published payment event",
		zap.String("type", evt.Type),
		zap.String("reference", evt.Reference))
	return nil
}

// ConsumePaymentEvents starts consuming payment.created events and hands
// each one to the handler.
func (c *RabbitMQClient) ConsumePaymentEvents(handler func(output.PaymentEvent) error) error {
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("started consuming payment events")

	go func() {
		for msg := range msgs {
			var evt output.PaymentEvent
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				c.log.Error("error unmarshaling event", zap.Error(err))
				msg.Nack(false, false) // Malformed, do not requeue
				continue
			}

			if err := handler(evt); err != nil {
				c.log.Error("error processing event",
					zap.String("reference", evt.Reference),
					zap.Error(err))
				if isPermanentError(err) {
					msg.Ack(false) // Acknowledge to remove from queue
				} else {
					msg.Nack(false, true) // Requeue for retry
				}
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// isPermanentError reports whether retrying the event can never succeed.
func isPermanentError(err error) bool {
	return errors.Is(err, core.ErrInvalidRequest) ||
		errors.Is(err, core.ErrInvalidTransition) ||
		errors.Is(err, core.ErrGatewayNotConfigured)
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
