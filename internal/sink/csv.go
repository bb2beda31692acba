package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shaiso/Rectify/internal/domain"
)

// StatusColumn — колонка со статусом item, добавляется последней.
const StatusColumn = "status"

// Record — transformed-значение, которое умеет быть строкой CSV.
// CSVHeader и CSVRecord должны возвращать срезы одинаковой длины.
type Record interface {
	CSVHeader() []string
	CSVRecord() []string
}

// CSVSink дописывает по строке на элемент в файл output_<task_group_id>.csv.
//
// Заголовок пишется только при создании файла: повторный запуск с тем же
// task_group_id дописывает строки без второго заголовка.
type CSVSink[I, T any] struct {
	dir string
	mu  sync.Mutex
}

// NewCSVSink создаёт CSVSink, пишущий в dir (создаётся при первой записи).
func NewCSVSink[I, T any](dir string) *CSVSink[I, T] {
	if dir == "" {
		dir = "output"
	}
	return &CSVSink[I, T]{dir: dir}
}

// Path возвращает путь к файлу task group.
func (s *CSVSink[I, T]) Path(groupID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("output_%s.csv", groupID))
}

// Emit реализует executor.Sink.
func (s *CSVSink[I, T]) Emit(_ context.Context, _ I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error {
	rec, ok := any(transformed).(Record)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedRecord, transformed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := s.Path(task.TaskGroupID)

	writeHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(append(rec.CSVHeader(), StatusColumn)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(append(rec.CSVRecord(), item.Status.String())); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
