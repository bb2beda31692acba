package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job — запускаемое по расписанию задание.
type Job func(ctx context.Context) error

// Scheduler запускает Job по cron-расписанию.
type Scheduler struct {
	schedule cron.Schedule
	loc      *time.Location
	job      Job
	logger   *slog.Logger
	now      func() time.Time
	interval time.Duration

	mu      sync.Mutex
	nextDue time.Time
	runs    int
}

// Config — конфигурация Scheduler.
type Config struct {
	// Cron — cron-выражение (обязательно).
	Cron string

	// Timezone — IANA timezone выражения (default: UTC).
	Timezone string

	// Job — задание (обязательно).
	Job Job

	// Logger (default: slog.Default())
	Logger *slog.Logger

	// Clock — источник времени (default: time.Now).
	Clock func() time.Time

	// TickInterval — период проверки в Run (default: 1s).
	TickInterval time.Duration
}

// New создаёт Scheduler и вычисляет первое время запуска.
func New(cfg Config) (*Scheduler, error) {
	schedule, err := ParseCron(cfg.Cron)
	if err != nil {
		return nil, err
	}
	if cfg.Job == nil {
		return nil, fmt.Errorf("scheduler job is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}

	s := &Scheduler{
		schedule: schedule,
		loc:      LoadLocation(cfg.Timezone),
		job:      cfg.Job,
		logger:   logger,
		now:      now,
		interval: interval,
	}
	s.nextDue = CalculateNext(s.schedule, s.loc, now())

	return s, nil
}

// NextDue возвращает время следующего запуска (UTC).
func (s *Scheduler) NextDue() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextDue
}

// Runs возвращает количество выполненных запусков.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Tick выполняет Job, если наступило время запуска.
// Возвращает true, если Job был вызван. Ошибка Job не сбивает расписание:
// следующее время вычисляется в любом случае.
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Before(s.nextDue) {
		return false, nil
	}

	due := s.nextDue
	s.logger.Info("scheduled run started", "due_at", due)

	err := s.job(ctx)
	s.runs++
	s.nextDue = CalculateNext(s.schedule, s.loc, s.now())

	if err != nil {
		return true, fmt.Errorf("scheduled run at %s: %w", due.Format(time.RFC3339), err)
	}

	s.logger.Info("scheduled run completed", "due_at", due, "next_due_at", s.nextDue)
	return true, nil
}

// Run вызывает Tick каждые TickInterval до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "next_due_at", s.NextDue())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", "runs", s.Runs())
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("scheduled run failed", "error", err)
			}
		}
	}
}
