package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shaiso/Rectify/internal/domain"
)

// SQLiteTaskRepo — репозиторий task groups в локальном файле SQLite.
//
// Транзакции открываются как BEGIN IMMEDIATE: блокировка на запись берётся
// сразу, поэтому конкурентные AddItem (в том числе из разных процессов)
// выбирают chunk последовательно.
type SQLiteTaskRepo[I, T any] struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite открывает базу SQLite и применяет схему.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?" + url.Values{
		"_txlock": {"immediate"},
		"_pragma": {"busy_timeout(5000)", "foreign_keys(1)", "journal_mode(WAL)"},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite допускает одного writer; внутри процесса сериализуем на пуле.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// NewSQLiteTaskRepo создаёт новый SQLiteTaskRepo поверх открытой базы.
func NewSQLiteTaskRepo[I, T any](db *sql.DB) *SQLiteTaskRepo[I, T] {
	return &SQLiteTaskRepo[I, T]{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create создаёт первый chunk task group.
func (r *SQLiteTaskRepo[I, T]) Create(ctx context.Context, task *domain.Task[I, T]) (*domain.Task[I, T], error) {
	if task.TaskGroupID == "" {
		task.TaskGroupID = uuid.NewString()
	}

	id := uuid.NewString()
	now := r.now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_chunks (id, task_group_id, name, is_dry_run, user_id, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, id, task.TaskGroupID, task.Name, task.IsDryRun, nullString(task.UserID), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert task chunk: %w", err)
	}

	created := *task
	created.ID = id
	created.Items = nil
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// AddItem добавляет item в первый chunk группы со свободным местом
// или создаёт новый chunk с метаданными первого chunk группы.
func (r *SQLiteTaskRepo[I, T]) AddItem(ctx context.Context, groupID string, item *domain.TaskItem[I, T]) (*domain.TaskItem[I, T], error) {
	inputJSON, transformedJSON, err := encodeItem(item)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now()

	var chunkID string
	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT id, item_count FROM task_chunks
		WHERE task_group_id = ? AND item_count < ?
		ORDER BY seq ASC
		LIMIT 1
	`, groupID, domain.ChunkCapacity).Scan(&chunkID, &count)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		chunkID, err = r.insertChunk(ctx, tx, groupID, now)
		if err != nil {
			return nil, err
		}
		count = 0
	case err != nil:
		return nil, fmt.Errorf("select chunk: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE task_chunks SET item_count = item_count + 1, updated_at = ? WHERE id = ?
		`, now, chunkID)
		if err != nil {
			return nil, fmt.Errorf("update item_count: %w", err)
		}
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_items (id, chunk_id, position, input_data, transformed_data, remark, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		chunkID,
		count,
		string(inputJSON),
		string(transformedJSON),
		nullString(item.Remark),
		item.Status.String(),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	saved := *item
	saved.ID = id
	saved.ChunkID = chunkID
	saved.CreatedAt = now
	saved.UpdatedAt = now
	return &saved, nil
}

// insertChunk создаёт новый chunk с item_count = 1.
func (r *SQLiteTaskRepo[I, T]) insertChunk(ctx context.Context, tx *sql.Tx, groupID string, now time.Time) (string, error) {
	var name string
	var isDryRun bool
	var userID *string

	err := tx.QueryRowContext(ctx, `
		SELECT name, is_dry_run, user_id FROM task_chunks
		WHERE task_group_id = ?
		ORDER BY seq ASC
		LIMIT 1
	`, groupID).Scan(&name, &isDryRun, &userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("select first chunk: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO task_chunks (id, task_group_id, name, is_dry_run, user_id, item_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
	`, id, groupID, name, isDryRun, userID, now, now)
	if err != nil {
		return "", fmt.Errorf("insert task chunk: %w", err)
	}
	return id, nil
}

// UpdateCompletedAt выставляет completed_at всем chunks группы одним UPDATE.
func (r *SQLiteTaskRepo[I, T]) UpdateCompletedAt(ctx context.Context, groupID string, completedAt time.Time) ([]domain.Task[I, T], error) {
	completedAt = completedAt.UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE task_chunks SET completed_at = ?, updated_at = ? WHERE task_group_id = ?
	`, completedAt, completedAt, groupID)
	if err != nil {
		return nil, fmt.Errorf("update completed_at: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.ListByGroupID(ctx, groupID)
}

// ListByGroupID возвращает все chunks группы в порядке создания
// вместе с items.
func (r *SQLiteTaskRepo[I, T]) ListByGroupID(ctx context.Context, groupID string) ([]domain.Task[I, T], error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_group_id, name, is_dry_run, user_id, completed_at, created_at, updated_at
		FROM task_chunks
		WHERE task_group_id = ?
		ORDER BY seq ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list task chunks: %w", err)
	}
	defer rows.Close()

	index := newChunkIndex[I, T]()
	for rows.Next() {
		var task domain.Task[I, T]
		var userID *string
		var completedAt sql.NullTime

		err := rows.Scan(
			&task.ID,
			&task.TaskGroupID,
			&task.Name,
			&task.IsDryRun,
			&userID,
			&completedAt,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task chunk: %w", err)
		}
		task.UserID = derefString(userID)
		if completedAt.Valid {
			t := completedAt.Time
			task.CompletedAt = &t
		}
		index.addChunk(task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(index.chunks) == 0 {
		return nil, ErrNotFound
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT i.chunk_id, i.id, i.input_data, i.transformed_data, i.remark, i.status, i.created_at, i.updated_at
		FROM task_items i
		JOIN task_chunks c ON c.id = i.chunk_id
		WHERE c.task_group_id = ?
		ORDER BY c.seq ASC, i.position ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list task items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.TaskItem[I, T]
		var chunkID, status string
		var inputJSON, transformedJSON, remark *string

		err := itemRows.Scan(
			&chunkID,
			&item.ID,
			&inputJSON,
			&transformedJSON,
			&remark,
			&status,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}

		if err := decodeItem(&item, bytesOf(inputJSON), bytesOf(transformedJSON)); err != nil {
			return nil, err
		}
		item.Remark = derefString(remark)
		item.Status = domain.ParseTaskItemStatus(status)

		if err := index.addItem(chunkID, item); err != nil {
			return nil, err
		}
	}
	return index.chunks, itemRows.Err()
}

// bytesOf возвращает nil для NULL.
func bytesOf(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}
