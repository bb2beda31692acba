package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Rectify/internal/domain"
)

// MemoryTaskRepo — in-memory репозиторий task groups.
// Используется в тестах и для запусков без внешнего хранилища.
type MemoryTaskRepo[I, T any] struct {
	mu     sync.Mutex
	chunks []*domain.Task[I, T] // в порядке создания
	now    func() time.Time
}

// NewMemoryTaskRepo создаёт новый MemoryTaskRepo.
func NewMemoryTaskRepo[I, T any]() *MemoryTaskRepo[I, T] {
	return &MemoryTaskRepo[I, T]{now: time.Now}
}

// Create создаёт первый chunk task group.
func (r *MemoryTaskRepo[I, T]) Create(_ context.Context, task *domain.Task[I, T]) (*domain.Task[I, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.TaskGroupID == "" {
		task.TaskGroupID = uuid.NewString()
	}

	now := r.now()
	chunk := *task
	chunk.ID = uuid.NewString()
	chunk.Items = nil
	chunk.CreatedAt = now
	chunk.UpdatedAt = now

	r.chunks = append(r.chunks, &chunk)
	return copyChunk(&chunk), nil
}

// AddItem добавляет item в первый chunk группы со свободным местом
// или создаёт новый chunk с метаданными первого chunk группы.
func (r *MemoryTaskRepo[I, T]) AddItem(_ context.Context, groupID string, item *domain.TaskItem[I, T]) (*domain.TaskItem[I, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	var first, target *domain.Task[I, T]
	for _, chunk := range r.chunks {
		if chunk.TaskGroupID != groupID {
			continue
		}
		if first == nil {
			first = chunk
		}
		if chunk.HasCapacity() {
			target = chunk
			break
		}
	}

	if target == nil {
		target = &domain.Task[I, T]{
			ID:          uuid.NewString(),
			TaskGroupID: groupID,
			CreatedAt:   now,
		}
		if first != nil {
			target.Name = first.Name
			target.IsDryRun = first.IsDryRun
			target.UserID = first.UserID
		}
		r.chunks = append(r.chunks, target)
	}

	saved := *item
	saved.ID = uuid.NewString()
	saved.ChunkID = target.ID
	saved.CreatedAt = now
	saved.UpdatedAt = now

	target.Items = append(target.Items, saved)
	target.UpdatedAt = now

	return &saved, nil
}

// UpdateCompletedAt выставляет completed_at всем chunks группы.
func (r *MemoryTaskRepo[I, T]) UpdateCompletedAt(_ context.Context, groupID string, completedAt time.Time) ([]domain.Task[I, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []domain.Task[I, T]
	for _, chunk := range r.chunks {
		if chunk.TaskGroupID != groupID {
			continue
		}
		at := completedAt
		chunk.CompletedAt = &at
		chunk.UpdatedAt = completedAt
		tasks = append(tasks, *copyChunk(chunk))
	}

	if len(tasks) == 0 {
		return nil, ErrNotFound
	}
	return tasks, nil
}

// ListByGroupID возвращает все chunks группы в порядке создания.
func (r *MemoryTaskRepo[I, T]) ListByGroupID(_ context.Context, groupID string) ([]domain.Task[I, T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tasks []domain.Task[I, T]
	for _, chunk := range r.chunks {
		if chunk.TaskGroupID == groupID {
			tasks = append(tasks, *copyChunk(chunk))
		}
	}

	if len(tasks) == 0 {
		return nil, ErrNotFound
	}
	return tasks, nil
}

// copyChunk копирует chunk вместе со срезом items.
func copyChunk[I, T any](chunk *domain.Task[I, T]) *domain.Task[I, T] {
	c := *chunk
	c.Items = append([]domain.TaskItem[I, T](nil), chunk.Items...)
	if chunk.CompletedAt != nil {
		at := *chunk.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
