package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/mq"
)

// Publisher — то, что PublishSink требует от mq.Publisher.
type Publisher interface {
	PublishOutcomeRecorded(ctx context.Context, payload mq.OutcomeRecordedPayload) error
	PublishRunCompleted(ctx context.Context, payload mq.RunCompletedPayload) error
}

// PublishSink публикует outcome.recorded на каждый item
// и run.completed после завершения task group.
type PublishSink[I, T any] struct {
	pub Publisher
}

// NewPublishSink создаёт PublishSink.
func NewPublishSink[I, T any](pub Publisher) *PublishSink[I, T] {
	return &PublishSink[I, T]{pub: pub}
}

// Emit реализует executor.Sink.
func (s *PublishSink[I, T]) Emit(ctx context.Context, input I, transformed T, task *domain.Task[I, T], item *domain.TaskItem[I, T]) error {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	transformedJSON, err := json.Marshal(transformed)
	if err != nil {
		return fmt.Errorf("marshal transformed: %w", err)
	}

	return s.pub.PublishOutcomeRecorded(ctx, mq.OutcomeRecordedPayload{
		TaskGroupID: task.TaskGroupID,
		ChunkID:     item.ChunkID,
		ItemID:      item.ID,
		Name:        task.Name,
		IsDryRun:    task.IsDryRun,
		Status:      item.Status.String(),
		Remark:      item.Remark,
		Input:       inputJSON,
		Transformed: transformedJSON,
	})
}

// Complete реализует executor.CompletionSink.
func (s *PublishSink[I, T]) Complete(ctx context.Context, tasks []domain.Task[I, T]) error {
	if len(tasks) == 0 {
		return nil
	}

	first := tasks[0]
	counts := domain.CountByStatus(tasks)

	payload := mq.RunCompletedPayload{
		TaskGroupID: first.TaskGroupID,
		Name:        first.Name,
		IsDryRun:    first.IsDryRun,
		Chunks:      len(tasks),
		Items:       len(domain.MergeItems(tasks)),
		Succeeded:   counts[domain.TaskItemStatusSuccess],
		Failed:      counts[domain.TaskItemStatusError],
	}
	if first.CompletedAt != nil {
		payload.CompletedAt = *first.CompletedAt
	}

	return s.pub.PublishRunCompleted(ctx, payload)
}
