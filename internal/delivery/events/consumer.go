package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
	"github.com/Pesokrava/perfume_catalog/internal/pkg/logger"
)

// Handler processes one message payload. A returned error leads to redelivery
// where the subscription supports it.
type Handler func(data []byte) error

// Consumer receives events from NATS
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	sub    *nats.Subscription
}

// NewConsumer connects to NATS
func NewConsumer(url, name string, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", url)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe delivers every message published on subject to handler.
// Delivery is at-most-once and does not consume the work queue.
func (c *Consumer) Subscribe(subject string, handler Handler) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.sub = sub
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Pull binds to the durable rating worker consumer and feeds messages to
// handler until ctx is cancelled. Failed messages are negatively acknowledged.
func (c *Consumer) Pull(ctx context.Context, handler Handler) error {
	js, err := c.nc.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streams := NewStreamConfig(js, c.logger)
	if err := streams.EnsureStream(); err != nil {
		return err
	}
	if err := streams.EnsureConsumer(); err != nil {
		return err
	}

	sub, err := js.PullSubscribe(domain.CommentEventsSubject, ConsumerName, nats.Bind(StreamName, ConsumerName), nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to bind to consumer %s: %w", ConsumerName, err)
	}
	c.sub = sub

	c.logger.WithFields(map[string]any{
		"stream":   StreamName,
		"consumer": ConsumerName,
	}).Info("Subscribed to JetStream consumer")

	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, msg := range msgs {
			if err := handler(msg.Data); err != nil {
				c.logger.Error("Failed to handle event", err)
				if nakErr := msg.Nak(); nakErr != nil {
					c.logger.Error("Failed to NAK message", nakErr)
				}
				continue
			}

			if ackErr := msg.Ack(); ackErr != nil {
				c.logger.Error("Failed to ACK message", ackErr)
			}
		}
	}
}

// Close unsubscribes and closes the NATS connection
func (c *Consumer) Close() {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from NATS: %v", err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// LoggingHandler logs every comment event it receives
func LoggingHandler(log *logger.Logger) Handler {
	return func(data []byte) error {
		var event domain.CommentEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal comment event", err)
			return err
		}

		fields := map[string]interface{}{
			"type":       event.Type,
			"perfume_id": event.PerfumeID.String(),
			"timestamp":  event.Timestamp,
		}
		if event.Comment != nil {
			fields["comment_id"] = event.Comment.ID.String()
			fields["author_id"] = event.Comment.AuthorID.String()
			fields["rating"] = event.Comment.Rating
		}

		log.WithFields(fields).Info("Received comment event")
		return nil
	}
}
