package correction

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/executor"
	"github.com/shaiso/Rectify/internal/sink"
	"github.com/shaiso/Rectify/internal/telemetry"
)

// Имена use cases, под которыми сохраняются task groups.
const (
	NameOrderStatusCorrection    = "OrderStatusCorrection"
	NameOrderStatusCorrectionCSV = "OrderStatusCorrectionCsv"
)

// StatusCorrected — текст статуса успешного исправления.
const StatusCorrected = "Order status data corrected successfully"

// Response — результат use case.
type Response = executor.Response[[]domain.Task[Input, Transform]]

// Params — параметры запуска use case.
type Params struct {
	IsDryRun bool
	UserID   string
}

// UseCase запускает исправление статусов через executor.
type UseCase struct {
	name     string
	exec     *executor.Executor[Input, Transform]
	strategy executor.Strategy[Input, Transform]
	sink     executor.Sink[Input, Transform]
	inputs   InputSource
	logger   *slog.Logger
	now      func() time.Time
}

// Config — конфигурация use case.
type Config struct {
	// Executor — движок запусков (обязательно).
	Executor *executor.Executor[Input, Transform]

	// Strategy (default: NewStrategy с SimulatedUpdater)
	Strategy executor.Strategy[Input, Transform]

	// Inputs (default: DefaultInputCount синтетических записей)
	Inputs InputSource

	// Sinks — дополнительные sinks после основного (например, sink.PublishSink).
	Sinks []executor.Sink[Input, Transform]

	// Logger (default: slog.Default())
	Logger *slog.Logger

	// Clock (default: time.Now)
	Clock func() time.Time
}

// NewOrderStatusCorrection создаёт use case с выводом в лог.
func NewOrderStatusCorrection(cfg Config) *UseCase {
	logger := loggerOf(cfg)
	return newUseCase(NameOrderStatusCorrection, cfg, sink.NewLogSink[Input, Transform](logger))
}

// NewOrderStatusCorrectionCSV создаёт use case с выводом в CSV-файлы в dir.
func NewOrderStatusCorrectionCSV(cfg Config, dir string) *UseCase {
	logger := loggerOf(cfg)
	primary := sink.Multi[Input, Transform]{
		sink.NewLogSink[Input, Transform](logger).WithLevel(slog.LevelDebug),
		sink.NewCSVSink[Input, Transform](dir),
	}
	return newUseCase(NameOrderStatusCorrectionCSV, cfg, primary)
}

func loggerOf(cfg Config) *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}

func newUseCase(name string, cfg Config, primary executor.Sink[Input, Transform]) *UseCase {
	logger := loggerOf(cfg)

	strategy := cfg.Strategy
	if strategy == nil {
		strategy = NewStrategy(StrategyConfig{Logger: logger})
	}

	inputs := cfg.Inputs
	if inputs == nil {
		inputs = RandomSource(DefaultInputCount)
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	var out executor.Sink[Input, Transform] = primary
	if len(cfg.Sinks) > 0 {
		out = append(sink.Multi[Input, Transform]{primary}, cfg.Sinks...)
	}

	return &UseCase{
		name:     name,
		exec:     cfg.Executor,
		strategy: strategy,
		sink:     out,
		inputs:   inputs,
		logger:   logger,
		now:      now,
	}
}

// Name возвращает имя use case.
func (u *UseCase) Name() string {
	return u.name
}

// Execute запускает исправление.
//
// Успех: 201 и task groups. Ошибка executor возвращается как есть (500).
func (u *UseCase) Execute(ctx context.Context, requestID string, p Params) Response {
	logger := telemetry.WithRequestID(u.logger, requestID)
	logger.Info("use case started", "name", u.name, "is_dry_run", p.IsDryRun)

	start := u.now()

	if u.exec == nil {
		return executor.Failure[[]domain.Task[Input, Transform]](ErrNoExecutor, u.now().Sub(start))
	}

	resp := u.exec.Execute(ctx, requestID, executor.Params[Input, Transform]{
		Name:     u.name,
		UserID:   p.UserID,
		Inputs:   u.inputs(),
		IsDryRun: p.IsDryRun,
		Strategy: u.strategy,
		Sink:     u.sink,
	})

	elapsed := u.now().Sub(start)

	if !resp.OK() {
		resp.TimeTakenMs = elapsed.Milliseconds()
		return resp
	}

	counts := domain.CountByStatus(resp.Data)
	logger.Info("use case completed",
		"name", u.name,
		"success", counts[domain.TaskItemStatusSuccess],
		"error", counts[domain.TaskItemStatusError],
		"time_taken_ms", elapsed.Milliseconds(),
	)

	return Response{
		StatusCode:  http.StatusCreated,
		Status:      StatusCorrected,
		TimeTakenMs: elapsed.Milliseconds(),
		Data:        resp.Data,
	}
}
