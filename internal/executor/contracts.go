package executor

import (
	"context"
	"time"

	"github.com/shaiso/Rectify/internal/domain"
)

// Strategy — доменная логика обработки одного элемента.
//
// Validate, DryRun и ActualRun по соглашению дополняют то же значение T,
// которое получили: поздние фазы читают поля, выставленные ранними
// (например, флаг прохождения валидации решает, выполнит ли ActualRun
// реальное изменение). Executor это соглашение не проверяет.
type Strategy[I, T any] interface {
	Transform(ctx context.Context, input I) (T, error)
	Validate(ctx context.Context, data T) (T, error)
	DryRun(ctx context.Context, data T) (T, error)
	ActualRun(ctx context.Context, data T) (T, error)
	Verify(ctx context.Context, data T) (bool, error)
}

// Sink — побочный вывод по каждому элементу.
// Вызывается ровно один раз на элемент, строго после сохранения item.
type Sink[I, T any] interface {
	Emit(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error
}

// SinkFunc — адаптер функции к Sink.
type SinkFunc[I, T any] func(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error

// Emit реализует Sink.
func (f SinkFunc[I, T]) Emit(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error {
	return f(ctx, input, transformed, task, item)
}

// CompletionSink — Sink, которому нужен итог запуска.
// Complete вызывается один раз после того, как группа помечена завершённой.
// Ошибка Complete логируется и не меняет результат запуска.
type CompletionSink[I, T any] interface {
	Complete(ctx context.Context, tasks []domain.Task[I, T]) error
}

// TaskRepository — хранилище task groups с разбиением на chunks.
//
// Реализации: repo.TaskRepo (PostgreSQL), repo.SQLiteTaskRepo, repo.MemoryTaskRepo.
type TaskRepository[I, T any] interface {
	// Create сохраняет первый chunk нового run.
	Create(ctx context.Context, task *domain.Task[I, T]) (*domain.Task[I, T], error)

	// AddItem добавляет item в первый chunk группы, где меньше
	// domain.ChunkCapacity items, либо атомарно создаёт новый chunk.
	// Возвращённый item несёт ChunkID того chunk, куда он записан.
	AddItem(ctx context.Context, groupID string, item *domain.TaskItem[I, T]) (*domain.TaskItem[I, T], error)

	// UpdateCompletedAt выставляет completed_at всем chunks группы
	// и возвращает их в порядке создания.
	UpdateCompletedAt(ctx context.Context, groupID string, completedAt time.Time) ([]domain.Task[I, T], error)
}
