// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики запусков и items
//
// Все команды используют единый формат логирования,
// метрики экспортируются на /metrics при заданном адресе.
package telemetry
