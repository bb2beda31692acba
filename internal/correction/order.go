package correction

import "strconv"

// OrderStatus — статус заказа.
type OrderStatus string

// Статусы заказа.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus — статус платежа.
type PaymentStatus string

// Статусы платежа.
const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DeliveryStatus — статус доставки.
type DeliveryStatus string

// Статусы доставки.
const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusReturned  DeliveryStatus = "returned"
)

var (
	orderStatuses    = []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusDelivered, OrderStatusCancelled}
	paymentStatuses  = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded}
	deliveryStatuses = []DeliveryStatus{DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusReturned}
)

// Order — заказ.
type Order struct {
	OrderID     string      `json:"order_id"`
	OrderStatus OrderStatus `json:"order_status"`
}

// Payment — платёж по заказу.
type Payment struct {
	PaymentID     string        `json:"payment_id"`
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// Delivery — доставка заказа.
type Delivery struct {
	DeliveryID     string         `json:"delivery_id"`
	OrderID        string         `json:"order_id"`
	DeliveryStatus DeliveryStatus `json:"delivery_status"`
}

// Input — связанные записи одного заказа. Любая часть может отсутствовать.
type Input struct {
	Order    *Order    `json:"order,omitempty"`
	Delivery *Delivery `json:"delivery,omitempty"`
	Payment  *Payment  `json:"payment,omitempty"`
}

func (in Input) orderID() string {
	if in.Order == nil {
		return ""
	}
	return in.Order.OrderID
}

// Transform — данные исправления, которые дополняются фазами Strategy.
type Transform struct {
	OrderID               string         `json:"order_id,omitempty"`
	DeliveryID            string         `json:"delivery_id,omitempty"`
	PaymentID             string         `json:"payment_id,omitempty"`
	CurrentOrderStatus    OrderStatus    `json:"current_order_status,omitempty"`
	CurrentDeliveryStatus DeliveryStatus `json:"current_delivery_status,omitempty"`
	CurrentPaymentStatus  PaymentStatus  `json:"current_payment_status,omitempty"`

	// изменяемые данные
	NewOrderStatus       OrderStatus `json:"new_order_status,omitempty"`
	IsOrderStatusUpdated bool        `json:"is_order_status_updated"`

	ValidationRemark  string `json:"validation_remark,omitempty"`
	HasPassValidation bool   `json:"has_pass_validation"`
}

// Remark реализует domain.Remarker.
func (t Transform) Remark() string {
	return t.ValidationRemark
}

// CSVHeader реализует sink.Record.
func (t Transform) CSVHeader() []string {
	return []string{
		"order_id",
		"delivery_id",
		"payment_id",
		"current_order_status",
		"current_delivery_status",
		"current_payment_status",
		"new_order_status",
		"is_order_status_updated",
		"validation_remark",
		"has_pass_validation",
	}
}

// CSVRecord реализует sink.Record.
func (t Transform) CSVRecord() []string {
	return []string{
		t.OrderID,
		t.DeliveryID,
		t.PaymentID,
		string(t.CurrentOrderStatus),
		string(t.CurrentDeliveryStatus),
		string(t.CurrentPaymentStatus),
		string(t.NewOrderStatus),
		strconv.FormatBool(t.IsOrderStatusUpdated),
		t.ValidationRemark,
		strconv.FormatBool(t.HasPassValidation),
	}
}
