package correction

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultInputCount — размер синтетического набора входных данных.
const DefaultInputCount = 1000

// InputSource возвращает входные данные запуска в стабильном порядке.
type InputSource func() []Input

// Generator создаёт синтетические связанные записи со случайными статусами.
// Заказ, платёж и доставка одного Input всегда имеют общий order_id.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator создаёт Generator с заданным seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// Inputs возвращает n входов.
func (g *Generator) Inputs(n int) []Input {
	inputs := make([]Input, 0, n)
	for range n {
		orderID := g.ObjectID()
		inputs = append(inputs, Input{
			Order: &Order{
				OrderID:     orderID,
				OrderStatus: orderStatuses[g.rng.IntN(len(orderStatuses))],
			},
			Delivery: &Delivery{
				DeliveryID:     g.ObjectID(),
				OrderID:        orderID,
				DeliveryStatus: deliveryStatuses[g.rng.IntN(len(deliveryStatuses))],
			},
			Payment: &Payment{
				PaymentID:     g.ObjectID(),
				OrderID:       orderID,
				PaymentStatus: paymentStatuses[g.rng.IntN(len(paymentStatuses))],
			},
		})
	}
	return inputs
}

// Source возвращает InputSource на n входов.
// Generator не безопасен для конкурентного использования: источник
// нельзя вызывать из нескольких запусков одновременно.
func (g *Generator) Source(n int) InputSource {
	return func() []Input { return g.Inputs(n) }
}

// RandomSource возвращает InputSource, который на каждый вызов создаёт
// новый Generator со случайным seed.
func RandomSource(n int) InputSource {
	return func() []Input {
		return NewGenerator(rand.Uint64()).Inputs(n)
	}
}

// ObjectID возвращает идентификатор в формате MongoDB ObjectId:
// 24 hex-символа, первые 8 — unix-время в секундах.
func (g *Generator) ObjectID() string {
	return fmt.Sprintf("%08x%016x", uint32(g.now().Unix()), g.rng.Uint64())
}
