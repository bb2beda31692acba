package domain

// TaskItemStatus — статус обработки одного входного элемента.
//
// Жизненный цикл:
//
//	PENDING → SUCCESS
//	        ↘ ERROR
//
// Статус присваивается ровно один раз, сразу после verify.
type TaskItemStatus string

const (
	// TaskItemStatusPending — item создан, verify ещё не выполнен.
	TaskItemStatusPending TaskItemStatus = "pending"

	// TaskItemStatusSuccess — verify вернул true.
	TaskItemStatusSuccess TaskItemStatus = "success"

	// TaskItemStatusError — verify вернул false.
	TaskItemStatusError TaskItemStatus = "error"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskItemStatus) IsTerminal() bool {
	switch s {
	case TaskItemStatusSuccess, TaskItemStatusError:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление TaskItemStatus.
func (s TaskItemStatus) String() string {
	return string(s)
}

// StatusFromVerify переводит результат verify в статус item.
func StatusFromVerify(ok bool) TaskItemStatus {
	if ok {
		return TaskItemStatusSuccess
	}
	return TaskItemStatusError
}

// ParseTaskItemStatus парсит строку в TaskItemStatus.
func ParseTaskItemStatus(s string) TaskItemStatus {
	switch s {
	case "success":
		return TaskItemStatusSuccess
	case "error":
		return TaskItemStatusError
	default:
		return TaskItemStatusPending
	}
}
