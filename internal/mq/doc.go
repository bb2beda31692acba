// Package mq публикует события запусков в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий
//   - consumer.go   — чтение событий (rectify events tail)
//
// Типы сообщений:
//   - outcome.recorded — item сохранён в task group
//   - run.completed    — task group помечена завершённой
//
// Exchanges:
//   - rectify.outcomes — события запусков
//   - rectify.dlq      — dead letter queue
package mq
