package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"blop-post/pkg/config"
	"blop-post/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	PostEventsExchange    = "post_events"
	MediaCleanupQueueName = "media_cleanup_queue"
)

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
	mu      sync.Mutex
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		PostEventsExchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// DeclareMediaCleanupQueue binds the janitor queue to the events that can
// leave an image without any post pointing at it.
func (c *Client) DeclareMediaCleanupQueue() error {
	_, err := c.channel.QueueDeclare(
		MediaCleanupQueueName, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, routingKey := range []EventType{EventPostDeleted, EventPostImageReplaced} {
		if err := c.channel.QueueBind(MediaCleanupQueueName, string(routingKey), PostEventsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", routingKey, err)
		}
	}
	return nil
}

// PublishPostEvent sends the event to the post_events exchange using its
// type as routing key.
func (c *Client) PublishPostEvent(ctx context.Context, event PostEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	c.mu.Lock()
	err = c.channel.PublishWithContext(ctx,
		PostEventsExchange, // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s for post %s: %v", event.Type, event.PostID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("[RABBITMQ] Published %s for post %s", event.Type, event.PostID)
	return nil
}

// ConsumePostEvents delivers events from queueName to handler until ctx is
// done or the channel closes.
func (c *Client) ConsumePostEvents(ctx context.Context, queueName string, handler func(context.Context, PostEvent) error) error {
	if err := c.channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := c.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			handleDelivery(ctx, msg, handler, c.logger)
		}
	}
}

// handleDelivery acks processed events. Malformed bodies are dropped; a
// failed handler gets one redelivery.
func handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, PostEvent) error, log *logger.Logger) {
	var event PostEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("[RABBITMQ] Failed to unmarshal post event: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		log.Error("[RABBITMQ] Handler failed for %s of post %s: %v", event.Type, event.PostID, err)
		msg.Nack(false, !msg.Redelivered)
		return
	}

	msg.Ack(false)
}
