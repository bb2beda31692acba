// Package scheduler повторяет запуск use case по cron-расписанию.
//
// Структура:
//   - scheduler.go — Scheduler (Tick, Run)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Cron:     "*/15 * * * *",
//	    Timezone: "Europe/Berlin",
//	    Job:      job,
//	    Logger:   logger,
//	})
//
//	// Блокирует до отмены ctx; Tick вызывается раз в секунду
//	err = sched.Run(ctx)
//
// Задание выполняется синхронно внутри Tick, поэтому два запуска
// одного Scheduler никогда не пересекаются.
package scheduler
