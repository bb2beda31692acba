// Package executor выполняет пакетные correction-задачи.
//
// # Обзор
//
// Executor берёт упорядоченный набор входных элементов, прогоняет каждый
// через фазы Strategy и сохраняет audit trail: один task group
// (возможно, из нескольких chunks) и один TaskItem на каждый элемент.
//
// # Фазы
//
// Для каждого элемента строго последовательно:
//
//  1. Transform — вход I превращается в рабочее значение T
//  2. Validate — проверка, результат пишется в T
//  3. DryRun или ActualRun — ровно одна из двух, по флагу запуска
//  4. Verify — true → success, false → error
//  5. TaskRepository.AddItem — сохранение результата
//  6. Sink.Emit — побочный вывод (лог, CSV, очередь)
//
// После последнего элемента все chunks группы получают одинаковый completed_at.
//
// # Ошибки
//
// Ошибка любой фазы, репозитория или sink не перехватывается: цикл
// прерывается на текущем элементе, уже сохранённые items остаются,
// completed_at не выставляется. Execute превращает ошибку в Response
// со статусом 500, время выполнения сообщается всегда.
//
// # Конкурентность
//
// Executor не хранит состояние вызова: все параметры передаются через Params,
// поэтому один экземпляр можно использовать из нескольких горутин.
// Атомарность добавления items в chunks обеспечивает репозиторий.
package executor
