package correction

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/executor"
	"github.com/shaiso/Rectify/internal/repo"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExecutor(store executor.TaskRepository[Input, Transform]) *executor.Executor[Input, Transform] {
	return executor.New(executor.Config[Input, Transform]{
		Repo:     store,
		Logger:   quietLogger(),
		IDSource: func() string { return "group-1" },
	})
}

func fixedInputs(inputs ...Input) InputSource {
	return func() []Input { return inputs }
}

func TestOrderStatusCorrection_DryRun(t *testing.T) {
	store := repo.NewMemoryTaskRepo[Input, Transform]()
	uc := NewOrderStatusCorrection(Config{
		Executor: newExecutor(store),
		Logger:   quietLogger(),
		Inputs: fixedInputs(
			input(OrderStatusPending, PaymentStatusPaid, DeliveryStatusPending),
			Input{Payment: &Payment{PaymentID: "p-2", PaymentStatus: PaymentStatusPaid}},
			input(OrderStatusPaid, PaymentStatusPaid, DeliveryStatusPending),
		),
	})

	resp := uc.Execute(context.Background(), "req-1", Params{IsDryRun: true, UserID: "u-1"})

	if resp.StatusCode != http.StatusCreated || resp.Status != StatusCorrected {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, resp.Status)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(resp.Data))
	}

	chunk := resp.Data[0]
	if chunk.Name != NameOrderStatusCorrection || !chunk.IsDryRun || chunk.UserID != "u-1" {
		t.Errorf("unexpected chunk metadata %+v", chunk)
	}
	if !chunk.IsCompleted() {
		t.Error("run should be completed")
	}

	items := chunk.Items
	if items[0].Status != domain.TaskItemStatusSuccess {
		t.Errorf("valid correction in dry run should succeed, got %s", items[0].Status)
	}

	// отсутствующий order_id: пояснение и error независимо от остальных полей
	if items[1].Remark != RemarkOrderIDEmpty || items[1].Status != domain.TaskItemStatusError {
		t.Errorf("missing order id: expected error with remark, got %s %q", items[1].Status, items[1].Remark)
	}
	if items[2].Remark != RemarkStatusSame || items[2].Status != domain.TaskItemStatusError {
		t.Errorf("same status: expected error with remark, got %s %q", items[2].Status, items[2].Remark)
	}
}

func TestOrderStatusCorrection_ActualRun(t *testing.T) {
	store := repo.NewMemoryTaskRepo[Input, Transform]()
	applied := 0
	uc := NewOrderStatusCorrection(Config{
		Executor: newExecutor(store),
		Logger:   quietLogger(),
		Strategy: NewStrategy(StrategyConfig{
			Logger: quietLogger(),
			Updater: func(context.Context, Transform) (bool, error) {
				applied++
				return applied%2 == 1, nil
			},
		}),
		Inputs: fixedInputs(
			input(OrderStatusPending, PaymentStatusPaid, DeliveryStatusPending),
			input(OrderStatusPending, PaymentStatusRefunded, DeliveryStatusPending),
			input(OrderStatusPending, PaymentStatusPending, DeliveryStatusPending),
		),
	})

	resp := uc.Execute(context.Background(), "req-2", Params{})
	if !resp.OK() {
		t.Fatalf("unexpected failure %q", resp.Status)
	}

	want := []domain.TaskItemStatus{
		domain.TaskItemStatusSuccess, // применено
		domain.TaskItemStatusError,   // валидация пройдена, обновление не удалось
		domain.TaskItemStatusSuccess, // отклонено и не применено
	}
	items := domain.MergeItems(resp.Data)
	for i, w := range want {
		if items[i].Status != w {
			t.Errorf("item %d: expected %s, got %s", i, w, items[i].Status)
		}
	}
	if applied != 2 {
		t.Errorf("updater should be called only for validated items, got %d", applied)
	}
}

func TestOrderStatusCorrection_Failure(t *testing.T) {
	store := repo.NewMemoryTaskRepo[Input, Transform]()
	uc := NewOrderStatusCorrection(Config{
		Executor: newExecutor(store),
		Logger:   quietLogger(),
		Strategy: NewStrategy(StrategyConfig{
			Logger: quietLogger(),
			Updater: func(context.Context, Transform) (bool, error) {
				return false, errors.New("order service unavailable")
			},
		}),
		Inputs: fixedInputs(
			input(OrderStatusPending, PaymentStatusPending, DeliveryStatusPending),
			input(OrderStatusPending, PaymentStatusPaid, DeliveryStatusPending),
		),
	})

	resp := uc.Execute(context.Background(), "req-3", Params{})

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if resp.Status != "order service unavailable" {
		t.Errorf("expected raw error message, got %q", resp.Status)
	}
	if resp.Data != nil {
		t.Error("data should be nil on failure")
	}

	chunks, err := store.ListByGroupID(context.Background(), "group-1")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(domain.MergeItems(chunks)); got != 1 {
		t.Errorf("expected 1 persisted item, got %d", got)
	}
	if chunks[0].IsCompleted() {
		t.Error("aborted run must not be completed")
	}
}

func TestOrderStatusCorrection_NoExecutor(t *testing.T) {
	uc := NewOrderStatusCorrection(Config{Logger: quietLogger(), Inputs: fixedInputs()})

	resp := uc.Execute(context.Background(), "req", Params{})
	if resp.StatusCode != http.StatusInternalServerError || resp.Status != ErrNoExecutor.Error() {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOrderStatusCorrectionCSV(t *testing.T) {
	dir := t.TempDir()
	store := repo.NewMemoryTaskRepo[Input, Transform]()
	uc := NewOrderStatusCorrectionCSV(Config{
		Executor: newExecutor(store),
		Logger:   quietLogger(),
		Inputs:   NewGenerator(3).Source(25),
	}, dir)

	if uc.Name() != NameOrderStatusCorrectionCSV {
		t.Errorf("unexpected name %s", uc.Name())
	}

	resp := uc.Execute(context.Background(), "req-4", Params{IsDryRun: true})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, resp.Status)
	}

	f, err := os.Open(filepath.Join(dir, "output_group-1.csv"))
	if err != nil {
		t.Fatalf("csv file should exist: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 26 {
		t.Fatalf("expected header + 25 rows, got %d", len(records))
	}
	if records[0][0] != "order_id" || records[0][len(records[0])-1] != "status" {
		t.Errorf("unexpected header %v", records[0])
	}

	items := domain.MergeItems(resp.Data)
	for i, rec := range records[1:] {
		if rec[len(rec)-1] != items[i].Status.String() {
			t.Errorf("row %d: status column should match item status", i)
		}
	}
}

func TestUseCase_ExtraSinks(t *testing.T) {
	store := repo.NewMemoryTaskRepo[Input, Transform]()
	var emitted int
	counter := executor.SinkFunc[Input, Transform](func(context.Context, Input, Transform, *domain.Task[Input, Transform], *domain.TaskItem[Input, Transform]) error {
		emitted++
		return nil
	})

	uc := NewOrderStatusCorrection(Config{
		Executor: newExecutor(store),
		Logger:   quietLogger(),
		Inputs:   NewGenerator(5).Source(4),
		Sinks:    []executor.Sink[Input, Transform]{counter},
	})

	if resp := uc.Execute(context.Background(), "req", Params{IsDryRun: true}); !resp.OK() {
		t.Fatalf("unexpected failure %q", resp.Status)
	}
	if emitted != 4 {
		t.Errorf("extra sink should see every item, got %d", emitted)
	}
}
