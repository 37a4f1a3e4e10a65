package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"

	"storefront/internal/models"
)

// OrderEventsQueue receives order lifecycle events.
const OrderEventsQueue = "order_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// mu guards channel for concurrent publishers.
	mu  sync.Mutex
	log *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the order events queue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareOrderEvents(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq connected", zap.String("queue", OrderEventsQueue))
	return &Client{conn: conn, channel: ch, log: log}, nil
}

func declareOrderEvents(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		OrderEventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", OrderEventsQueue, err)
	}
	return q, nil
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to the order events queue. The
// event type travels in the message Type property.
func (c *Client) Publish(eventType string, body []byte) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		"",               // default exchange
		OrderEventsQueue, // routing key is the queue name
		false,            // mandatory
		false,            // immediate
		NewEvent(eventType, body, time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	c.log.Debug("event published", zap.String("type", eventType))
	return nil
}

// NewEvent builds the publishing for an event body.
func NewEvent(eventType string, body []byte, at time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         eventType,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
	}
}

// ConsumeOrderEvents delivers every message on the order events queue to
// handler. Messages are acked on success and requeued once on failure.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	c.mu.Lock()
	queue, err := declareOrderEvents(c.channel)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for order events", zap.String("queue", queue.Name))

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.log.Warn("order event failed",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.Bool("redelivered", msg.Redelivered),
					zap.Error(err),
				)
				// Requeue once; a redelivered failure is dropped.
				if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
					c.log.Error("nack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Error("ack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}

// OrderEventLogger returns a handler that records confirmed orders in the log.
// Unknown event types are acked and ignored.
func OrderEventLogger(log *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		if msg.Type != models.EventOrderConfirmed {
			log.Debug("ignoring order event", zap.String("type", msg.Type))
			return nil
		}
		var event models.OrderConfirmedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode order.confirmed: %w", err)
		}
		if event.OrderID == "" {
			return errors.New("order.confirmed without orderID")
		}
		log.Info("order confirmed",
			zap.String("order_id", event.OrderID),
			zap.String("email", event.Email),
			zap.Int("items", len(event.Items)),
			zap.Float64("total", event.Total),
		)
		return nil
	}
}
