package mq

import "errors"

// ErrNoChannel — AMQP канал недоступен (соединение закрыто или переподключается).
var ErrNoChannel = errors.New("no amqp channel available")
