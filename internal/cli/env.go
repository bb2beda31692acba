package cli

import (
	"context"
	"log/slog"

	"github.com/shaiso/Rectify/internal/correction"
	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/mq"
)

// RunReader читает сохранённые task groups.
type RunReader interface {
	ListByGroupID(ctx context.Context, groupID string) ([]domain.Task[correction.Input, correction.Transform], error)
}

// EventSource читает события запусков из очереди.
type EventSource interface {
	Consume(ctx context.Context, queue mq.Queue, handler mq.Handler) error
}

// Env — зависимости команд.
type Env struct {
	// Correction — use case с выводом в лог.
	Correction *correction.UseCase

	// CorrectionCSV — use case с выводом в CSV.
	CorrectionCSV *correction.UseCase

	// Runs — чтение task groups для runs show.
	Runs RunReader

	// Events — источник событий для events tail (nil, если MQ выключен).
	Events EventSource

	// Cron, Timezone — расписание по умолчанию из конфигурации.
	Cron     string
	Timezone string

	Logger *slog.Logger
}
