package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeOutcomes Exchange = "rectify.outcomes"
	ExchangeDLQ      Exchange = "rectify.dlq"
)

// Queues.
const (
	QueueOutcomesRecorded Queue = "outcomes.recorded"
	QueueRunsCompleted    Queue = "runs.completed"
	QueueDLQOutcomes      Queue = "dlq.outcomes"
)

// Routing keys.
const (
	RoutingKeyRecorded  RoutingKey = "recorded"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQ       RoutingKey = "outcomes"
)

type queueDecl struct {
	name       Queue
	exchange   Exchange
	routingKey RoutingKey
	args       amqp.Table
}

// topology возвращает очереди вместе с их привязками.
func topology() []queueDecl {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQ),
	}

	return []queueDecl{
		// outcomes.recorded — отклонённые потребителем сообщения уходят в DLQ
		{QueueOutcomesRecorded, ExchangeOutcomes, RoutingKeyRecorded, dlqArgs},
		{QueueRunsCompleted, ExchangeOutcomes, RoutingKeyCompleted, nil},
		{QueueDLQOutcomes, ExchangeDLQ, RoutingKeyDLQ, nil},
	}
}

// SetupTopology объявляет exchanges и queues. Операция идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeOutcomes, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, q := range topology() {
			_, err := ch.QueueDeclare(
				string(q.name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.args,         // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}

			if err := ch.QueueBind(string(q.name), string(q.routingKey), string(q.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", q.name, q.exchange, err)
			}
		}

		return nil
	})
}

// QueueFor возвращает очередь, в которую попадают сообщения данного типа.
func QueueFor(t MessageType) (Queue, bool) {
	switch t {
	case MessageTypeOutcomeRecorded:
		return QueueOutcomesRecorded, true
	case MessageTypeRunCompleted:
		return QueueRunsCompleted, true
	default:
		return "", false
	}
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Rectify RabbitMQ Topology:

    rectify.outcomes (direct)
    ├── outcomes.recorded [routing: recorded]
    │       DLQ: dlq.outcomes
    └── runs.completed [routing: completed]

    rectify.dlq (direct)
    └── dlq.outcomes [routing: outcomes]
  `
}
