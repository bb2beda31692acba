// Package cli реализует команды Rectify.
//
// # Обзор
//
// Команды запускают use cases исправления данных, показывают
// сохранённые task groups и читают события из RabbitMQ.
//
// # Ключевые компоненты
//
// ## Env
//
// Зависимости команд (use cases, репозиторий, источник событий).
// Создаётся в cmd/rectify после парсинга PersistentFlags, поэтому
// фабрики команд принимают envFn — замыкание для ленивого доступа.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: rectify runs show ID --json | jq .
//
// ## Commands
//
//   - order-status-correction [--dryrun] [--cron EXPR]
//   - order-status-correction-csv [--dryrun] [--cron EXPR]
//   - runs show GROUP_ID [--items]
//   - events tail [--queue NAME]
package cli
