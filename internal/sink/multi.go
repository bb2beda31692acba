package sink

import (
	"context"
	"errors"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/executor"
)

// Multi вызывает sinks по порядку. Первая ошибка Emit прерывает цепочку.
type Multi[I, T any] []executor.Sink[I, T]

// Emit реализует executor.Sink.
func (m Multi[I, T]) Emit(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error {
	for _, s := range m {
		if err := s.Emit(ctx, input, transformed, task, item); err != nil {
			return err
		}
	}
	return nil
}

// Complete передаёт итог запуска всем sinks, реализующим
// executor.CompletionSink, и собирает их ошибки.
func (m Multi[I, T]) Complete(ctx context.Context, tasks []domain.Task[I, T]) error {
	var errs []error
	for _, s := range m {
		if cs, ok := s.(executor.CompletionSink[I, T]); ok {
			if err := cs.Complete(ctx, tasks); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
