package correction

import (
	"context"
	"errors"
	"testing"
)

func input(orderStatus OrderStatus, payment PaymentStatus, delivery DeliveryStatus) Input {
	return Input{
		Order:    &Order{OrderID: "o-1", OrderStatus: orderStatus},
		Payment:  &Payment{PaymentID: "p-1", OrderID: "o-1", PaymentStatus: payment},
		Delivery: &Delivery{DeliveryID: "d-1", OrderID: "o-1", DeliveryStatus: delivery},
	}
}

func TestStrategy_TransformPriority(t *testing.T) {
	tests := []struct {
		name     string
		payment  PaymentStatus
		delivery DeliveryStatus
		want     OrderStatus
	}{
		{"paid wins over delivered", PaymentStatusPaid, DeliveryStatusDelivered, OrderStatusPaid},
		{"paid wins over returned", PaymentStatusPaid, DeliveryStatusReturned, OrderStatusPaid},
		{"refunded wins over delivered", PaymentStatusRefunded, DeliveryStatusDelivered, OrderStatusCancelled},
		{"delivered", PaymentStatusPending, DeliveryStatusDelivered, OrderStatusDelivered},
		{"returned", PaymentStatusPending, DeliveryStatusReturned, OrderStatusCancelled},
		{"nothing matches", PaymentStatusPending, DeliveryStatusPending, ""},
	}

	s := NewStrategy(StrategyConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Transform(context.Background(), input(OrderStatusPending, tt.payment, tt.delivery))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.NewOrderStatus != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.NewOrderStatus)
			}
			if got.IsOrderStatusUpdated {
				t.Error("transform must not mark status updated")
			}
		})
	}
}

func TestStrategy_TransformRequiresMatchingOrderID(t *testing.T) {
	s := NewStrategy(StrategyConfig{})
	in := input(OrderStatusPending, PaymentStatusPaid, DeliveryStatusDelivered)
	in.Payment.OrderID = "other"

	got, err := s.Transform(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	// платёж другого заказа пропускается, срабатывает правило доставки
	if got.NewOrderStatus != OrderStatusDelivered {
		t.Errorf("expected delivered, got %q", got.NewOrderStatus)
	}
	if got.PaymentID != "p-1" || got.CurrentPaymentStatus != PaymentStatusPaid {
		t.Errorf("payment fields should still be copied: %+v", got)
	}
}

func TestStrategy_TransformMissingParts(t *testing.T) {
	s := NewStrategy(StrategyConfig{})

	got, err := s.Transform(context.Background(), Input{
		Payment: &Payment{PaymentID: "p-1", PaymentStatus: PaymentStatusPaid},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.OrderID != "" || got.CurrentOrderStatus != "" {
		t.Errorf("order fields should be empty: %+v", got)
	}
	// пустой order_id совпадает с пустым order_id платежа
	if got.NewOrderStatus != OrderStatusPaid {
		t.Errorf("expected paid, got %q", got.NewOrderStatus)
	}

	if _, err := s.Transform(context.Background(), Input{}); err != nil {
		t.Errorf("empty input should not fail: %v", err)
	}
}

func TestStrategy_Validate(t *testing.T) {
	tests := []struct {
		name       string
		in         Transform
		wantPass   bool
		wantRemark string
	}{
		{"order id empty", Transform{NewOrderStatus: OrderStatusPaid}, false, RemarkOrderIDEmpty},
		{"order id empty wins", Transform{}, false, RemarkOrderIDEmpty},
		{"new status empty", Transform{OrderID: "o-1", CurrentOrderStatus: OrderStatusPending}, false, RemarkNewStatusEmpty},
		{"same status", Transform{OrderID: "o-1", CurrentOrderStatus: OrderStatusPaid, NewOrderStatus: OrderStatusPaid}, false, RemarkStatusSame},
		{"valid", Transform{OrderID: "o-1", CurrentOrderStatus: OrderStatusPending, NewOrderStatus: OrderStatusPaid}, true, ""},
	}

	s := NewStrategy(StrategyConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Validate(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("validation rejects without error, got %v", err)
			}
			if got.HasPassValidation != tt.wantPass {
				t.Errorf("expected pass=%v, got %v", tt.wantPass, got.HasPassValidation)
			}
			if got.ValidationRemark != tt.wantRemark {
				t.Errorf("expected remark %q, got %q", tt.wantRemark, got.ValidationRemark)
			}
			if got.Remark() != tt.wantRemark {
				t.Error("Remark() should expose validation remark")
			}
		})
	}
}

func TestStrategy_DryRun(t *testing.T) {
	called := false
	s := NewStrategy(StrategyConfig{Updater: func(context.Context, Transform) (bool, error) {
		called = true
		return true, nil
	}})

	got, err := s.DryRun(context.Background(), Transform{HasPassValidation: false})
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsOrderStatusUpdated {
		t.Error("dry run should mark status updated")
	}
	if called {
		t.Error("dry run must not call the updater")
	}
}

func TestStrategy_ActualRun(t *testing.T) {
	boom := errors.New("api down")

	tests := []struct {
		name        string
		pass        bool
		result      bool
		err         error
		wantUpdated bool
		wantCalled  bool
		wantErr     error
	}{
		{"validated and applied", true, true, nil, true, true, nil},
		{"validated and not applied", true, false, nil, false, true, nil},
		{"not validated", false, true, nil, false, false, nil},
		{"updater error", true, false, boom, false, true, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			s := NewStrategy(StrategyConfig{Updater: func(context.Context, Transform) (bool, error) {
				called = true
				return tt.result, tt.err
			}})

			got, err := s.ActualRun(context.Background(), Transform{OrderID: "o-1", HasPassValidation: tt.pass})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if called != tt.wantCalled {
				t.Errorf("expected called=%v, got %v", tt.wantCalled, called)
			}
			if got.IsOrderStatusUpdated != tt.wantUpdated {
				t.Errorf("expected updated=%v, got %v", tt.wantUpdated, got.IsOrderStatusUpdated)
			}
		})
	}
}

func TestStrategy_Verify(t *testing.T) {
	tests := []struct {
		pass, updated, want bool
	}{
		{true, true, true},
		{false, false, true},
		{true, false, false},
		{false, true, false},
	}

	s := NewStrategy(StrategyConfig{})
	for _, tt := range tests {
		got, err := s.Verify(context.Background(), Transform{HasPassValidation: tt.pass, IsOrderStatusUpdated: tt.updated})
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("pass=%v updated=%v: expected %v, got %v", tt.pass, tt.updated, tt.want, got)
		}
	}
}

func TestStrategy_MissingOrderIDByMode(t *testing.T) {
	ctx := context.Background()
	s := NewStrategy(StrategyConfig{Updater: func(context.Context, Transform) (bool, error) {
		t.Fatal("updater must not be called for a rejected record")
		return false, nil
	}})

	validated, err := s.Validate(ctx, Transform{})
	if err != nil {
		t.Fatal(err)
	}
	if validated.HasPassValidation {
		t.Fatal("record without order_id should not pass validation")
	}

	dry, _ := s.DryRun(ctx, validated)
	if ok, _ := s.Verify(ctx, dry); ok {
		t.Error("dry run: record without order_id should fail verify")
	}

	actual, err := s.ActualRun(ctx, validated)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Verify(ctx, actual); !ok {
		t.Error("actual run: rejected and not updated record is consistent")
	}
}

func TestTransform_CSVRecord(t *testing.T) {
	tr := Transform{
		OrderID:              "o-1",
		NewOrderStatus:       OrderStatusPaid,
		IsOrderStatusUpdated: true,
		ValidationRemark:     "",
	}

	header, record := tr.CSVHeader(), tr.CSVRecord()
	if len(header) != len(record) {
		t.Fatalf("header and record length differ: %d vs %d", len(header), len(record))
	}
	if record[0] != "o-1" || record[6] != "paid" || record[7] != "true" || record[9] != "false" {
		t.Errorf("unexpected record %v", record)
	}
}
