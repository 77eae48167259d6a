package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const auditQueueName = "audit.events"

// RabbitMQAuditQueueImpl 以 RabbitMQ durable queue 實作 AuditQueue，
// 供不想多養一套 Redis Stream 的部署選用（AUDIT_QUEUE_DRIVER=rabbitmq）。
type RabbitMQAuditQueueImpl struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitMQAuditQueue(url string) (AuditQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(auditQueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}

	return &RabbitMQAuditQueueImpl{conn: conn, ch: ch}, nil
}

func (q *RabbitMQAuditQueueImpl) PublishEvent(ctx context.Context, event *model.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	return q.ch.PublishWithContext(ctx, "", auditQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (q *RabbitMQAuditQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}

	if err := ch.Qos(50, 0, false); err != nil {
		logger.WithComponent("audit-mq").Warn("set QoS failed", zap.Error(err))
	}

	msgs, err := ch.Consume(auditQueueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue consume: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}

				var event model.AuditEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					logger.WithComponent("audit-mq").Warn("unmarshal audit event failed", zap.Error(err))
					// 壞消息不重回，避免 tight loop
					_ = d.Nack(false, false)
					continue
				}

				delivery := d
				select {
				case out <- Delivery{
					Data: &event,
					Ack:  func() { _ = delivery.Ack(false) },
					Nack: func(requeue bool) { _ = delivery.Nack(false, requeue) },
				}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
