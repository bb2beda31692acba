package correction

import (
	"context"
	"log/slog"
	"math/rand/v2"
)

// Причины отклонения при валидации.
const (
	RemarkOrderIDEmpty   = "Order id is empty"
	RemarkNewStatusEmpty = "New order status is empty"
	RemarkStatusSame     = "New order status & existing order status is same"
)

// Updater применяет новый статус заказа во внешней системе
// и сообщает, удалось ли обновление.
type Updater func(ctx context.Context, data Transform) (bool, error)

// SimulatedUpdater имитирует ответ API: обновление удаётся с вероятностью 1/2.
func SimulatedUpdater(context.Context, Transform) (bool, error) {
	return rand.IntN(2) == 1, nil
}

// Strategy реализует executor.Strategy[Input, Transform].
type Strategy struct {
	update Updater
	logger *slog.Logger
}

// StrategyConfig — конфигурация Strategy.
type StrategyConfig struct {
	// Updater (default: SimulatedUpdater)
	Updater Updater

	// Logger (default: slog.Default())
	Logger *slog.Logger
}

// NewStrategy создаёт Strategy.
func NewStrategy(cfg StrategyConfig) *Strategy {
	update := cfg.Updater
	if update == nil {
		update = SimulatedUpdater
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Strategy{update: update, logger: logger}
}

// Transform выводит новый статус заказа.
//
// Правила проверяются по порядку, срабатывает первое подходящее.
// Каждое правило учитывает только запись с тем же order_id, что у заказа:
//
//	payment paid       → PAID
//	payment refunded   → CANCELLED
//	delivery delivered → DELIVERED
//	delivery returned  → CANCELLED
func (s *Strategy) Transform(_ context.Context, in Input) (Transform, error) {
	s.logger.Debug("transforming input", "input", in)

	t := Transform{OrderID: in.orderID()}
	if in.Order != nil {
		t.CurrentOrderStatus = in.Order.OrderStatus
	}
	if in.Delivery != nil {
		t.DeliveryID = in.Delivery.DeliveryID
		t.CurrentDeliveryStatus = in.Delivery.DeliveryStatus
	}
	if in.Payment != nil {
		t.PaymentID = in.Payment.PaymentID
		t.CurrentPaymentStatus = in.Payment.PaymentStatus
	}

	paymentMatches := in.Payment != nil && in.Payment.OrderID == t.OrderID
	deliveryMatches := in.Delivery != nil && in.Delivery.OrderID == t.OrderID

	switch {
	case paymentMatches && in.Payment.PaymentStatus == PaymentStatusPaid:
		t.NewOrderStatus = OrderStatusPaid
	case paymentMatches && in.Payment.PaymentStatus == PaymentStatusRefunded:
		t.NewOrderStatus = OrderStatusCancelled
	case deliveryMatches && in.Delivery.DeliveryStatus == DeliveryStatusDelivered:
		t.NewOrderStatus = OrderStatusDelivered
	case deliveryMatches && in.Delivery.DeliveryStatus == DeliveryStatusReturned:
		t.NewOrderStatus = OrderStatusCancelled
	}

	return t, nil
}

// Validate отклоняет исправление с пояснением в ValidationRemark.
// Отклонение не ошибка: item будет записан, итог решит Verify.
func (s *Strategy) Validate(_ context.Context, t Transform) (Transform, error) {
	s.logger.Debug("validating transformed data", "order_id", t.OrderID)

	switch {
	case t.OrderID == "":
		t.ValidationRemark = RemarkOrderIDEmpty
	case t.NewOrderStatus == "":
		t.ValidationRemark = RemarkNewStatusEmpty
	case t.CurrentOrderStatus == t.NewOrderStatus:
		t.ValidationRemark = RemarkStatusSame
	default:
		t.HasPassValidation = true
		return t, nil
	}

	t.HasPassValidation = false
	return t, nil
}

// DryRun помечает статус обновлённым без реального изменения.
func (s *Strategy) DryRun(_ context.Context, t Transform) (Transform, error) {
	s.logger.Debug("dry running", "order_id", t.OrderID)

	t.IsOrderStatusUpdated = true
	return t, nil
}

// ActualRun применяет статус, только если валидация пройдена.
func (s *Strategy) ActualRun(ctx context.Context, t Transform) (Transform, error) {
	s.logger.Debug("actual running", "order_id", t.OrderID)

	if !t.HasPassValidation {
		return t, nil
	}

	updated, err := s.update(ctx, t)
	if err != nil {
		return t, err
	}
	t.IsOrderStatusUpdated = updated
	return t, nil
}

// Verify проверяет, что решение об изменении согласовано с валидацией:
// статус обновлён тогда и только тогда, когда валидация пройдена.
//
// Verify проверяет согласованность, а не факт исправления. В actual run
// запись без order_id не проходит валидацию и не обновляется, поэтому
// получает success. Ошибкой она становится только в dry run, где
// DryRun помечает обновлёнными все записи.
func (s *Strategy) Verify(_ context.Context, t Transform) (bool, error) {
	return t.HasPassValidation == t.IsOrderStatusUpdated, nil
}
