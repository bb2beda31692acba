// Package correction — исправление статусов заказов по данным
// оплат и доставок.
//
// Для каждого заказа Strategy выводит новый статус из связанных
// платежа и доставки (общий order_id), проверяет его и применяет.
// Use cases OrderStatusCorrection и OrderStatusCorrectionCSV запускают
// Strategy через executor с выводом в лог или в CSV.
package correction
