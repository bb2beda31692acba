package executor

import (
	"errors"
	"fmt"
)

// Ошибки параметров запуска.
var (
	// ErrNilStrategy — не передана стратегия.
	ErrNilStrategy = errors.New("strategy is required")

	// ErrNilSink — не передан sink.
	ErrNilSink = errors.New("sink is required")

	// ErrNilRepository — executor создан без репозитория.
	ErrNilRepository = errors.New("task repository is required")
)

// Phase — фаза pipeline.
type Phase string

// Фазы pipeline.
const (
	PhaseTransform Phase = "transform"
	PhaseValidate  Phase = "validate"
	PhaseDryRun    Phase = "dry_run"
	PhaseActualRun Phase = "actual_run"
	PhaseVerify    Phase = "verify"
)

// PhaseError — ошибка, возвращённая фазой стратегии.
//
// Error() возвращает сообщение исходной ошибки без изменений:
// вызывающий получает ровно тот текст, который вернула стратегия.
// Фаза и номер элемента доступны через errors.As.
type PhaseError struct {
	Phase Phase // фаза, в которой произошла ошибка
	Index int   // номер элемента (с нуля)
	Err   error // исходная ошибка
}

// Error реализует интерфейс error.
func (e *PhaseError) Error() string {
	return e.Err.Error()
}

// Unwrap возвращает исходную ошибку.
func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Describe возвращает сообщение с фазой и номером элемента (для логов).
func (e *PhaseError) Describe() string {
	return fmt.Sprintf("item %d: %s: %v", e.Index, e.Phase, e.Err)
}

func newPhaseError(phase Phase, index int, err error) *PhaseError {
	return &PhaseError{Phase: phase, Index: index, Err: err}
}
