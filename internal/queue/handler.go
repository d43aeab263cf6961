package queue

import (
	"encoding/json"
	"errors"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const retriesHeader = "x-retries"

func retriesOf(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// HandleProcessingError moves a failed message to the retry queue, or to
// the dead letter queue once it was retried MaxRetries times or failed
// permanently. Dead lettered jobs are announced on GraphFailedTopic. The
// original delivery is acked once the copy is published and requeued
// otherwise.
func HandleProcessingError(p Publisher, msg amqp091.Delivery, queueName string, procErr error) {
	retries := retriesOf(msg.Headers)

	if retries >= MaxRetries || errors.Is(procErr, ErrPermanent) {
		dlqName := queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", dlqName, "retries", retries)
		if err := p.Publish("", dlqName, false, false, persistent(msg.ContentType, msg.Body, msg.Headers)); err != nil {
			logger.Error("[Queue] Failed to publish to DLQ", "dlq", dlqName, "err", err)
			_ = msg.Nack(false, true)
			return
		}
		announceFailure(p, msg.Body, procErr)
		_ = msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retriesHeader] = int32(retries + 1)

	if err := p.Publish("", retryName, false, false, persistent(msg.ContentType, msg.Body, headers)); err != nil {
		logger.Error("[Queue] Failed to publish to retry queue", "retry_queue", retryName, "err", err)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

func announceFailure(p Publisher, body []byte, procErr error) {
	var job ExtractJobMsg
	if err := json.Unmarshal(body, &job); err != nil || job.JobID == "" {
		return
	}

	msg := GraphCompletedMsg{JobID: job.JobID}
	if procErr != nil {
		msg.Error = procErr.Error()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := PublishTopic(p, GraphFailedTopic, data); err != nil {
		logger.Warn("[Queue] Failed to announce failed job", "job_id", job.JobID, "err", err)
	}
}
