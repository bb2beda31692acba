package domain

import (
	"time"
)

// ChunkCapacity — максимальное количество items в одном chunk.
// Хранилище ограничивает размер одной записи, поэтому run (task group)
// физически разбивается на несколько chunks с общим TaskGroupID.
const ChunkCapacity = 200

// Task — физический chunk одного запуска (task group).
//
// Логический run идентифицируется TaskGroupID и может занимать
// несколько chunks. Полный список items получается чтением всех chunks
// группы в порядке создания (см. MergeItems).
type Task[I, T any] struct {
	// ID — уникальный идентификатор chunk.
	ID string `json:"id"`

	// TaskGroupID — идентификатор логического run, общий для всех chunks.
	TaskGroupID string `json:"task_group_id"`

	// Name — имя use case, который создал run.
	Name string `json:"name"`

	// IsDryRun — режим запуска, фиксирован на весь run.
	IsDryRun bool `json:"is_dry_run"`

	// UserID — инициатор запуска (опционально).
	UserID string `json:"user_id,omitempty"`

	// Items — результаты обработки в порядке добавления.
	Items []TaskItem[I, T] `json:"items"`

	// CompletedAt — время завершения run.
	// Nil, пока не обработаны все входные элементы.
	// Одинаково для всех chunks группы.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// CreatedAt — время создания chunk.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения chunk.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask создаёт первый chunk нового run.
func NewTask[I, T any](groupID, name, userID string, isDryRun bool) *Task[I, T] {
	return &Task[I, T]{
		TaskGroupID: groupID,
		Name:        name,
		IsDryRun:    isDryRun,
		UserID:      userID,
	}
}

// IsCompleted возвращает true, если run помечен завершённым.
func (t *Task[I, T]) IsCompleted() bool {
	return t.CompletedAt != nil
}

// HasCapacity проверяет, можно ли добавить в chunk ещё один item.
func (t *Task[I, T]) HasCapacity() bool {
	return len(t.Items) < ChunkCapacity
}

// TaskItem — результат обработки одного входного элемента.
type TaskItem[I, T any] struct {
	// ID — уникальный идентификатор item.
	ID string `json:"id"`

	// ChunkID — chunk, в котором хранится item. Заполняется хранилищем.
	ChunkID string `json:"-"`

	// InputData — исходный входной элемент.
	InputData I `json:"input_data"`

	// TransformedData — значение после всех фаз pipeline.
	TransformedData T `json:"transformed_data"`

	// Remark — пояснение от стратегии (опционально).
	Remark string `json:"remark,omitempty"`

	// Status — итог verify.
	Status TaskItemStatus `json:"status"`

	// CreatedAt — время создания item.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения item.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskItem создаёт item с итоговым статусом по результату verify.
func NewTaskItem[I, T any](input I, transformed T, ok bool, remark string) *TaskItem[I, T] {
	return &TaskItem[I, T]{
		InputData:       input,
		TransformedData: transformed,
		Remark:          remark,
		Status:          StatusFromVerify(ok),
	}
}

// Remarker реализуется transformed-значениями, которые несут пояснение
// для TaskItem.Remark.
type Remarker interface {
	Remark() string
}

// RemarkOf возвращает пояснение из значения, если оно реализует Remarker.
func RemarkOf(v any) string {
	if r, ok := v.(Remarker); ok {
		return r.Remark()
	}
	return ""
}

// MergeItems склеивает items всех chunks группы.
// Chunks должны быть упорядочены по времени создания.
func MergeItems[I, T any](chunks []Task[I, T]) []TaskItem[I, T] {
	total := 0
	for i := range chunks {
		total += len(chunks[i].Items)
	}

	items := make([]TaskItem[I, T], 0, total)
	for i := range chunks {
		items = append(items, chunks[i].Items...)
	}
	return items
}

// CountByStatus возвращает количество items каждого статуса во всех chunks.
func CountByStatus[I, T any](chunks []Task[I, T]) map[TaskItemStatus]int {
	counts := make(map[TaskItemStatus]int)
	for i := range chunks {
		for _, item := range chunks[i].Items {
			counts[item.Status]++
		}
	}
	return counts
}
