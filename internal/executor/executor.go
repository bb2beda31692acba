package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/telemetry"
)

// StatusExecuted — текст статуса успешного выполнения.
const StatusExecuted = "Script executed successfully"

// IDSource генерирует идентификаторы task groups.
type IDSource func() string

// Params — параметры одного запуска.
type Params[I, T any] struct {
	// Name — имя use case, создавшего запуск.
	Name string

	// UserID — инициатор запуска (опционально).
	UserID string

	// Inputs — входные элементы в порядке обработки.
	Inputs []I

	// IsDryRun — вызывать DryRun вместо ActualRun.
	IsDryRun bool

	// Strategy — доменная логика.
	Strategy Strategy[I, T]

	// Sink — побочный вывод по каждому элементу.
	Sink Sink[I, T]
}

func (p *Params[I, T]) validate() error {
	if p.Strategy == nil {
		return ErrNilStrategy
	}
	if p.Sink == nil {
		return ErrNilSink
	}
	return nil
}

// Executor — движок пакетных запусков.
type Executor[I, T any] struct {
	repo    TaskRepository[I, T]
	logger  *slog.Logger
	metrics *telemetry.Metrics
	newID   IDSource
	now     func() time.Time
}

// Config — конфигурация Executor.
type Config[I, T any] struct {
	// Repo — хранилище task groups (обязательно).
	Repo TaskRepository[I, T]

	// Logger (default: slog.Default())
	Logger *slog.Logger

	// Metrics — Prometheus метрики (опционально).
	Metrics *telemetry.Metrics

	// IDSource — генератор task_group_id (default: uuid.NewString).
	IDSource IDSource

	// Clock — источник времени (default: time.Now).
	Clock func() time.Time
}

// New создаёт новый Executor.
func New[I, T any](cfg Config[I, T]) *Executor[I, T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	newID := cfg.IDSource
	if newID == nil {
		newID = uuid.NewString
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Executor[I, T]{
		repo:    cfg.Repo,
		logger:  logger,
		metrics: cfg.Metrics,
		newID:   newID,
		now:     now,
	}
}

// Execute выполняет запуск и превращает результат в Response.
//
// Ошибка Handle не возвращается наружу: она становится статусом 500
// с текстом ошибки и пустыми данными. Время выполнения заполняется всегда.
func (e *Executor[I, T]) Execute(ctx context.Context, requestID string, p Params[I, T]) Response[[]domain.Task[I, T]] {
	logger := telemetry.WithRequestID(e.logger, requestID)
	start := e.now()

	e.metrics.RunStarted(p.Name)

	tasks, err := e.Handle(ctx, requestID, p)
	elapsed := e.now().Sub(start)

	if err != nil {
		logger.Error("script execution failed",
			"name", p.Name,
			"error", err,
			"time_taken_ms", elapsed.Milliseconds(),
		)
		e.metrics.RunFailed(p.Name, elapsed)
		return Failure[[]domain.Task[I, T]](err, elapsed)
	}

	logger.Info("script executed",
		"name", p.Name,
		"chunks", len(tasks),
		"time_taken_ms", elapsed.Milliseconds(),
	)
	e.metrics.RunCompleted(p.Name, elapsed)

	return Response[[]domain.Task[I, T]]{
		StatusCode:  http.StatusOK,
		Status:      StatusExecuted,
		TimeTakenMs: elapsed.Milliseconds(),
		Data:        tasks,
	}
}

// Handle выполняет запуск.
//
// Создаёт task group, обрабатывает элементы по порядку и помечает группу
// завершённой. Любая ошибка прерывает цикл и возвращается как есть:
// items 1..k-1 остаются сохранёнными, completed_at не выставляется,
// для элемента с ошибкой item не создаётся.
func (e *Executor[I, T]) Handle(ctx context.Context, requestID string, p Params[I, T]) ([]domain.Task[I, T], error) {
	if e.repo == nil {
		return nil, ErrNilRepository
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	task := domain.NewTask[I, T](e.newID(), p.Name, p.UserID, p.IsDryRun)
	created, err := e.repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	groupID := created.TaskGroupID
	logger := telemetry.WithGroupID(telemetry.WithRequestID(e.logger, requestID), groupID)
	logger.Info("task group created",
		"name", p.Name,
		"is_dry_run", p.IsDryRun,
		"inputs", len(p.Inputs),
	)

	for i, input := range p.Inputs {
		transformed, ok, err := e.process(ctx, i, input, p)
		if err != nil {
			var pe *PhaseError
			if errors.As(err, &pe) {
				logger.Warn("phase failed", "detail", pe.Describe())
			}
			return nil, err
		}

		item := domain.NewTaskItem(input, transformed, ok, domain.RemarkOf(transformed))
		saved, err := e.repo.AddItem(ctx, groupID, item)
		if err != nil {
			return nil, fmt.Errorf("add item %d: %w", i, err)
		}
		if saved == nil {
			saved = item
		}
		e.metrics.ItemRecorded(p.Name, saved.Status.String())

		logger.Debug("item recorded", "index", i, "status", saved.Status)

		if err := p.Sink.Emit(ctx, input, transformed, created, saved); err != nil {
			return nil, fmt.Errorf("emit item %d: %w", i, err)
		}
	}

	tasks, err := e.repo.UpdateCompletedAt(ctx, groupID, e.now())
	if err != nil {
		return nil, fmt.Errorf("update completed_at: %w", err)
	}

	logger.Info("task group completed", "chunks", len(tasks))

	if cs, ok := p.Sink.(CompletionSink[I, T]); ok {
		if err := cs.Complete(ctx, tasks); err != nil {
			logger.Warn("sink completion failed", "error", err)
		}
	}
	return tasks, nil
}

// process прогоняет один элемент через фазы стратегии.
func (e *Executor[I, T]) process(ctx context.Context, index int, input I, p Params[I, T]) (T, bool, error) {
	var zero T

	transformed, err := p.Strategy.Transform(ctx, input)
	if err != nil {
		return zero, false, newPhaseError(PhaseTransform, index, err)
	}

	transformed, err = p.Strategy.Validate(ctx, transformed)
	if err != nil {
		return zero, false, newPhaseError(PhaseValidate, index, err)
	}

	if p.IsDryRun {
		transformed, err = p.Strategy.DryRun(ctx, transformed)
		if err != nil {
			return zero, false, newPhaseError(PhaseDryRun, index, err)
		}
	} else {
		transformed, err = p.Strategy.ActualRun(ctx, transformed)
		if err != nil {
			return zero, false, newPhaseError(PhaseActualRun, index, err)
		}
	}

	ok, err := p.Strategy.Verify(ctx, transformed)
	if err != nil {
		return zero, false, newPhaseError(PhaseVerify, index, err)
	}

	return transformed, ok, nil
}
