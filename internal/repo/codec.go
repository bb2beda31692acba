package repo

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Rectify/internal/domain"
)

// encodeItem сериализует входные и преобразованные данные item.
func encodeItem[I, T any](item *domain.TaskItem[I, T]) (inputJSON, transformedJSON []byte, err error) {
	inputJSON, err = json.Marshal(item.InputData)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal input_data: %w", err)
	}
	transformedJSON, err = json.Marshal(item.TransformedData)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal transformed_data: %w", err)
	}
	return inputJSON, transformedJSON, nil
}

// decodeItem восстанавливает данные item из JSON.
func decodeItem[I, T any](item *domain.TaskItem[I, T], inputJSON, transformedJSON []byte) error {
	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &item.InputData); err != nil {
			return fmt.Errorf("unmarshal input_data: %w", err)
		}
	}
	if transformedJSON != nil {
		if err := json.Unmarshal(transformedJSON, &item.TransformedData); err != nil {
			return fmt.Errorf("unmarshal transformed_data: %w", err)
		}
	}
	return nil
}

// chunkIndex собирает items по chunks, сохраняя порядок chunks.
type chunkIndex[I, T any] struct {
	chunks []domain.Task[I, T]
	byID   map[string]int
}

func newChunkIndex[I, T any]() *chunkIndex[I, T] {
	return &chunkIndex[I, T]{byID: make(map[string]int)}
}

func (c *chunkIndex[I, T]) addChunk(task domain.Task[I, T]) {
	c.byID[task.ID] = len(c.chunks)
	c.chunks = append(c.chunks, task)
}

func (c *chunkIndex[I, T]) addItem(chunkID string, item domain.TaskItem[I, T]) error {
	i, ok := c.byID[chunkID]
	if !ok {
		return fmt.Errorf("item %s references unknown chunk %s: %w", item.ID, chunkID, ErrInvalidState)
	}
	item.ChunkID = chunkID
	c.chunks[i].Items = append(c.chunks[i].Items, item)
	return nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// derefString возвращает пустую строку для NULL.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
