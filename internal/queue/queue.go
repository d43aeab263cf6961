package queue

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExtractQueue = "extract_queue"

	Exchange            = "pubsub_exchange"
	GraphCompletedTopic = "graph.completed"
	GraphFailedTopic    = "graph.failed"

	// MaxRetries is the number of redeliveries before a message is moved to
	// the dead letter queue.
	MaxRetries = 10
	// RetryDelay is the time a failed message waits in the retry queue.
	RetryDelay = 10 * time.Second
)

// Publisher is the part of an amqp091.Channel used to publish messages.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

var _ Publisher = (*amqp091.Channel)(nil)

// ConnURL builds the broker URL from the RABBITMQ_* environment.
func ConnURL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(util.GetEnvString("RABBITMQ_USER", "guest"), util.GetEnvString("RABBITMQ_PASSWORD", "guest")),
		Host:   fmt.Sprintf("%s:%s", util.GetEnvString("RABBITMQ_HOST", "localhost"), util.GetEnvString("RABBITMQ_PORT", "5672")),
		Path:   "/",
	}
	return u.String()
}

// Connect dials the broker, retrying while it is not reachable yet.
func Connect(ctx context.Context) (*amqp091.Connection, error) {
	var conn *amqp091.Connection
	err := util.RetryErrWithBackoff(ctx, 5, time.Second, func(ctx context.Context) error {
		c, err := amqp091.Dial(ConnURL())
		if err != nil {
			logger.Warn("[Queue] Failed to connect to RabbitMQ", "err", err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupQueues declares the topic exchange and, for every queue name, the
// queue itself, its dead letter queue and a retry queue whose messages
// expire back into the queue after RetryDelay.
func SetupQueues(ch *amqp091.Channel, queueNames ...string) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(RetryDelay.Milliseconds()),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

func declareExchange(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		Exchange,
		"topic",
		false,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}
	return nil
}

func persistent(contentType string, data []byte, headers amqp091.Table) amqp091.Publishing {
	return amqp091.Publishing{
		ContentType:  contentType,
		Body:         data,
		Headers:      headers,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}
}

// PublishFIFO sends data to the named queue through the default exchange.
func PublishFIFO(p Publisher, queueName string, data []byte) error {
	return p.Publish("", queueName, false, false, persistent("application/json", data, nil))
}

// PublishTopic sends data to Exchange with the given routing key.
func PublishTopic(p Publisher, topic string, data []byte) error {
	return p.Publish(Exchange, topic, false, false, persistent("application/json", data, nil))
}
