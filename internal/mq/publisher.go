package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeOutcomeRecorded MessageType = "outcome.recorded"
	MessageTypeRunCompleted    MessageType = "run.completed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// OutcomeRecordedPayload — payload события о сохранённом item.
type OutcomeRecordedPayload struct {
	TaskGroupID string          `json:"task_group_id"`
	ChunkID     string          `json:"chunk_id"`
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	IsDryRun    bool            `json:"is_dry_run"`
	Status      string          `json:"status"`
	Remark      string          `json:"remark,omitempty"`
	Input       json.RawMessage `json:"input_data"`
	Transformed json.RawMessage `json:"transformed_data"`
}

// RunCompletedPayload — payload события о завершённой task group.
type RunCompletedPayload struct {
	TaskGroupID string    `json:"task_group_id"`
	Name        string    `json:"name"`
	IsDryRun    bool      `json:"is_dry_run"`
	Chunks      int       `json:"chunks"`
	Items       int       `json:"items"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher публикует события запусков в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

// newMessage оборачивает payload в Message.
func newMessage(msgType MessageType, payload any, now time.Time) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: now,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx, string(exchange), string(routingKey), false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Type:         string(msg.Type),
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishOutcomeRecorded публикует событие о сохранённом item.
func (p *Publisher) PublishOutcomeRecorded(ctx context.Context, payload OutcomeRecordedPayload) error {
	msg := newMessage(MessageTypeOutcomeRecorded, payload, p.now())
	return p.Publish(ctx, ExchangeOutcomes, RoutingKeyRecorded, msg)
}

// PublishRunCompleted публикует событие о завершённой task group.
func (p *Publisher) PublishRunCompleted(ctx context.Context, payload RunCompletedPayload) error {
	msg := newMessage(MessageTypeRunCompleted, payload, p.now())
	return p.Publish(ctx, ExchangeOutcomes, RoutingKeyCompleted, msg)
}
