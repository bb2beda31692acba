package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Rectify/internal/domain"
)

// TaskRepo — репозиторий task groups в PostgreSQL.
//
// Добавление item выполняется в транзакции под advisory lock по
// task_group_id: конкурентные AddItem одной группы сериализуются,
// поэтому ни один chunk не превышает domain.ChunkCapacity и новый chunk
// не создаётся, пока в существующем есть место.
type TaskRepo[I, T any] struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTaskRepo создаёт новый TaskRepo.
func NewTaskRepo[I, T any](pool *pgxpool.Pool) *TaskRepo[I, T] {
	return &TaskRepo[I, T]{pool: pool, now: time.Now}
}

// Migrate создаёт таблицы, если их нет.
func (r *TaskRepo[I, T]) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Create создаёт первый chunk task group.
func (r *TaskRepo[I, T]) Create(ctx context.Context, task *domain.Task[I, T]) (*domain.Task[I, T], error) {
	if task.TaskGroupID == "" {
		task.TaskGroupID = uuid.NewString()
	}

	id := uuid.New()
	now := r.now()

	query := `
		INSERT INTO task_chunks (id, task_group_id, name, is_dry_run, user_id, item_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		id,
		task.TaskGroupID,
		task.Name,
		task.IsDryRun,
		nullString(task.UserID),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task chunk: %w", err)
	}

	created := *task
	created.ID = id.String()
	created.Items = nil
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// AddItem добавляет item в первый chunk группы со свободным местом
// или создаёт новый chunk с метаданными первого chunk группы.
func (r *TaskRepo[I, T]) AddItem(ctx context.Context, groupID string, item *domain.TaskItem[I, T]) (*domain.TaskItem[I, T], error) {
	inputJSON, transformedJSON, err := encodeItem(item)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, groupID); err != nil {
		return nil, fmt.Errorf("lock task group: %w", err)
	}

	now := r.now()

	var chunkID uuid.UUID
	var position int
	err = tx.QueryRow(ctx, `
		UPDATE task_chunks
		SET item_count = item_count + 1, updated_at = $3
		WHERE id = (
			SELECT id FROM task_chunks
			WHERE task_group_id = $1 AND item_count < $2
			ORDER BY seq ASC
			LIMIT 1
		)
		RETURNING id, item_count - 1
	`, groupID, domain.ChunkCapacity, now).Scan(&chunkID, &position)

	if errors.Is(err, pgx.ErrNoRows) {
		chunkID, err = r.insertChunk(ctx, tx, groupID, now)
		position = 0
	}
	if err != nil {
		return nil, fmt.Errorf("select chunk: %w", err)
	}

	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO task_items (id, chunk_id, position, input_data, transformed_data, remark, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`,
		id,
		chunkID,
		position,
		inputJSON,
		transformedJSON,
		nullString(item.Remark),
		item.Status.String(),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	saved := *item
	saved.ID = id.String()
	saved.ChunkID = chunkID.String()
	saved.CreatedAt = now
	saved.UpdatedAt = now
	return &saved, nil
}

// insertChunk создаёт новый chunk с item_count = 1.
// Name, is_dry_run и user_id копируются из первого chunk группы.
func (r *TaskRepo[I, T]) insertChunk(ctx context.Context, tx pgx.Tx, groupID string, now time.Time) (uuid.UUID, error) {
	var name string
	var isDryRun bool
	var userID *string

	err := tx.QueryRow(ctx, `
		SELECT name, is_dry_run, user_id FROM task_chunks
		WHERE task_group_id = $1
		ORDER BY seq ASC
		LIMIT 1
	`, groupID).Scan(&name, &isDryRun, &userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("select first chunk: %w", err)
	}

	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO task_chunks (id, task_group_id, name, is_dry_run, user_id, item_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
	`, id, groupID, name, isDryRun, userID, now)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert task chunk: %w", err)
	}
	return id, nil
}

// UpdateCompletedAt выставляет completed_at всем chunks группы одним UPDATE.
func (r *TaskRepo[I, T]) UpdateCompletedAt(ctx context.Context, groupID string, completedAt time.Time) ([]domain.Task[I, T], error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE task_chunks
		SET completed_at = $2, updated_at = $2
		WHERE task_group_id = $1
	`, groupID, completedAt)
	if err != nil {
		return nil, fmt.Errorf("update completed_at: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.ListByGroupID(ctx, groupID)
}

// ListByGroupID возвращает все chunks группы в порядке создания
// вместе с items.
func (r *TaskRepo[I, T]) ListByGroupID(ctx context.Context, groupID string) ([]domain.Task[I, T], error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_group_id, name, is_dry_run, user_id, completed_at, created_at, updated_at
		FROM task_chunks
		WHERE task_group_id = $1
		ORDER BY seq ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list task chunks: %w", err)
	}
	defer rows.Close()

	index := newChunkIndex[I, T]()
	for rows.Next() {
		task, err := r.scanChunk(rows)
		if err != nil {
			return nil, err
		}
		index.addChunk(*task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(index.chunks) == 0 {
		return nil, ErrNotFound
	}

	itemRows, err := r.pool.Query(ctx, `
		SELECT i.chunk_id, i.id, i.input_data, i.transformed_data, i.remark, i.status, i.created_at, i.updated_at
		FROM task_items i
		JOIN task_chunks c ON c.id = i.chunk_id
		WHERE c.task_group_id = $1
		ORDER BY c.seq ASC, i.position ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list task items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		chunkID, item, err := r.scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		if err := index.addItem(chunkID, *item); err != nil {
			return nil, err
		}
	}
	return index.chunks, itemRows.Err()
}

// --- Helpers ---

func (r *TaskRepo[I, T]) scanChunk(rows pgx.Rows) (*domain.Task[I, T], error) {
	var task domain.Task[I, T]
	var id uuid.UUID
	var userID *string

	err := rows.Scan(
		&id,
		&task.TaskGroupID,
		&task.Name,
		&task.IsDryRun,
		&userID,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan task chunk: %w", err)
	}

	task.ID = id.String()
	task.UserID = derefString(userID)
	return &task, nil
}

func (r *TaskRepo[I, T]) scanItem(rows pgx.Rows) (string, *domain.TaskItem[I, T], error) {
	var item domain.TaskItem[I, T]
	var chunkID, id uuid.UUID
	var inputJSON, transformedJSON []byte
	var remark *string
	var status string

	err := rows.Scan(
		&chunkID,
		&id,
		&inputJSON,
		&transformedJSON,
		&remark,
		&status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return "", nil, fmt.Errorf("scan task item: %w", err)
	}

	if err := decodeItem(&item, inputJSON, transformedJSON); err != nil {
		return "", nil, err
	}

	item.ID = id.String()
	item.Remark = derefString(remark)
	item.Status = domain.ParseTaskItemStatus(status)
	return chunkID.String(), &item, nil
}
