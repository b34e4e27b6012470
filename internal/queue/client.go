// Package queue carries summary recompute requests over RabbitMQ from the API
// server to the summary worker.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

var ErrChannelClosed = errors.New("message channel closed")

// Handler processes one decoded request. A returned error requeues the message.
type Handler func(ctx context.Context, req *SummaryRequest) error

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	publishMu    sync.Mutex
	logger       *slog.Logger
}

func NewClient(url, exchangeName, queueName string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

// setup declares a durable direct exchange and queue bound by the queue name.
func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishSummaryRequest publishes a persistent recompute request
func (c *Client) PublishSummaryRequest(ctx context.Context, req SummaryRequest) error {
	body, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.publishMu.Lock()
	err = c.channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	c.publishMu.Unlock()
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "published summary request",
		"user_id", req.UserID,
		"date", req.Date,
		"reason", req.Reason,
		"queue", c.queueName,
	)

	return nil
}

// ConsumeSummaryRequests blocks, handing each delivery to handler until ctx
// is cancelled or the broker closes the channel.
func (c *Client) ConsumeSummaryRequests(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "started consuming summary requests", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrChannelClosed
			}
			handleDelivery(ctx, c.logger, delivery.Body, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery the consume loop needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// handleDelivery drops undecodable bodies, requeues handler failures and
// acknowledges everything else.
func handleDelivery(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler Handler) {
	req, err := SummaryRequestFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to decode summary request", "error", err)
		if nackErr := ack.Nack(false, false); nackErr != nil {
			logger.ErrorContext(ctx, "failed to reject message", "error", nackErr)
		}
		return
	}

	if err := handler(ctx, req); err != nil {
		logger.ErrorContext(ctx, "failed to handle summary request",
			"user_id", req.UserID,
			"date", req.Date,
			"error", err,
		)
		if nackErr := ack.Nack(false, true); nackErr != nil {
			logger.ErrorContext(ctx, "failed to requeue message", "error", nackErr)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.ErrorContext(ctx, "failed to acknowledge message", "error", err)
		return
	}
	logger.DebugContext(ctx, "processed summary request", "user_id", req.UserID, "date", req.Date)
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
