package sink

import (
	"context"
	"log/slog"

	"github.com/shaiso/Rectify/internal/domain"
)

// LogSink пишет каждый обработанный элемент в лог.
type LogSink[I, T any] struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink создаёт LogSink. Nil logger означает slog.Default().
func NewLogSink[I, T any](logger *slog.Logger) *LogSink[I, T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink[I, T]{logger: logger, level: slog.LevelInfo}
}

// WithLevel задаёт уровень записей.
func (s *LogSink[I, T]) WithLevel(level slog.Level) *LogSink[I, T] {
	s.level = level
	return s
}

// Emit реализует executor.Sink.
func (s *LogSink[I, T]) Emit(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error {
	s.logger.Log(ctx, s.level, "item processed",
		"task_group_id", task.TaskGroupID,
		"chunk_id", item.ChunkID,
		"item_id", item.ID,
		"status", item.Status,
		slog.Any("input", input),
		slog.Any("transform", transformed),
		slog.Group("task",
			"name", task.Name,
			"is_dry_run", task.IsDryRun,
			"user_id", task.UserID,
		),
		slog.Group("task_item",
			"remark", item.Remark,
			"created_at", item.CreatedAt,
		),
	)
	return nil
}
