package costbasis

import (
	"fmt"
	"iter"

	"github.com/etnz/costbasis/date"
)

// Lot is a batch of units acquired at one unit cost.
type Lot struct {
	On       date.Date // acquisition date
	Quantity Quantity  // remaining units, always positive while in a queue
	UnitCost Money
}

// Cost returns the cost of the remaining units of the lot.
func (l Lot) Cost() Money { return l.UnitCost.Mul(l.Quantity) }

// Consumption is the part of a lot removed by a disposal.
type Consumption struct {
	On       date.Date // acquisition date of the consumed lot
	Quantity Quantity
	UnitCost Money
	Cost     Money // cost relieved from the inventory for Quantity units
}

// inventory is the state a cost-flow method keeps for one side of a position.
type inventory interface {
	Acquire(on date.Date, quantity Quantity, unitCost Money)
	Dispose(quantity Quantity) (consumed []Consumption, excess Quantity)
	Quantity() Quantity
	Cost() Money
}

// newInventory returns an empty inventory for the given method.
func newInventory(method CostBasisMethod) inventory {
	if method == AverageCost {
		return new(averagePool)
	}
	return new(LotQueue)
}

// LotQueue holds open lots in acquisition order, oldest first.
//
// Lots are stored in a ring buffer so that disposals remove from the front
// without shifting the remaining lots. The total quantity and cost of the
// open lots are maintained on every operation.
//
// The zero value is an empty queue ready to use.
type LotQueue struct {
	buf  []Lot
	head int // index of the oldest lot in buf
	n    int // number of lots

	quantity Quantity
	cost     Money
}

// Len returns the number of open lots.
func (q *LotQueue) Len() int { return q.n }

// Quantity returns the total number of units held in open lots.
func (q *LotQueue) Quantity() Quantity { return q.quantity }

// Cost returns the total cost of the units held in open lots.
func (q *LotQueue) Cost() Money { return q.cost }

// AverageCost returns the quantity-weighted unit cost of open lots, or zero
// if the queue is empty.
func (q *LotQueue) AverageCost() Money {
	if q.quantity.IsZero() {
		return M(0, q.cost.Currency())
	}
	return q.cost.Div(q.quantity)
}

// Lots iterates over open lots, oldest first.
func (q *LotQueue) Lots() iter.Seq[Lot] {
	return func(yield func(Lot) bool) {
		for i := 0; i < q.n; i++ {
			if !yield(q.buf[(q.head+i)%len(q.buf)]) {
				return
			}
		}
	}
}

// Acquire appends a new lot at the back of the queue.
// Non positive quantities are ignored.
func (q *LotQueue) Acquire(on date.Date, quantity Quantity, unitCost Money) {
	if !quantity.IsPositive() {
		return
	}
	if q.n == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.n)%len(q.buf)] = Lot{On: on, Quantity: quantity, UnitCost: unitCost}
	q.n++
	q.quantity = q.quantity.Add(quantity)
	q.cost = q.cost.Add(unitCost.Mul(quantity))
}

// Dispose removes quantity units from the oldest lots.
//
// It returns the consumed parts, earliest acquired first, and the excess
// quantity that could not be served because the queue ran out of lots.
func (q *LotQueue) Dispose(quantity Quantity) (consumed []Consumption, excess Quantity) {
	remaining := quantity
	for remaining.IsPositive() && q.n > 0 {
		front := &q.buf[q.head]
		taken := front.Quantity.min(remaining)
		c := Consumption{On: front.On, Quantity: taken, UnitCost: front.UnitCost, Cost: front.UnitCost.Mul(taken)}
		consumed = append(consumed, c)

		front.Quantity = front.Quantity.Sub(taken)
		remaining = remaining.Sub(taken)
		q.quantity = q.quantity.Sub(taken)
		q.cost = q.cost.Sub(c.Cost)
		if front.Quantity.IsZero() {
			q.pop()
		}
	}
	if q.n == 0 {
		// no rounding residue can survive an empty queue.
		q.quantity = Quantity{}
		q.cost = M(0, q.cost.Currency())
	}
	return consumed, remaining
}

// pop removes the front lot.
func (q *LotQueue) pop() {
	q.buf[q.head] = Lot{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	if q.n == 0 {
		q.head = 0
	}
}

// grow doubles the ring buffer capacity, unrolling the lots at the start.
func (q *LotQueue) grow() {
	size := 2 * len(q.buf)
	if size == 0 {
		size = 4
	}
	buf := make([]Lot, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf, q.head = buf, 0
}

// verify recomputes the aggregates with a full scan and compares them to the
// running ones.
func (q *LotQueue) verify() error {
	var quantity Quantity
	var cost Money
	for l := range q.Lots() {
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("lot of %v units in queue", l.Quantity)
		}
		quantity = quantity.Add(l.Quantity)
		cost = cost.Add(l.Cost())
	}
	if !quantity.Equal(q.quantity) {
		return fmt.Errorf("running quantity %v, scanned %v", q.quantity, quantity)
	}
	if !cost.value.Equal(q.cost.value) {
		return fmt.Errorf("running cost %v, scanned %v", q.cost.value, cost.value)
	}
	return nil
}

// averagePool is the single aggregate of the weighted-average method: every
// open unit has the same, average, unit cost.
type averagePool struct {
	quantity Quantity
	cost     Money
}

func (p *averagePool) Quantity() Quantity { return p.quantity }
func (p *averagePool) Cost() Money        { return p.cost }

// Acquire adds units to the pool, blending their cost into the average.
func (p *averagePool) Acquire(_ date.Date, quantity Quantity, unitCost Money) {
	if !quantity.IsPositive() {
		return
	}
	p.quantity = p.quantity.Add(quantity)
	p.cost = p.cost.Add(unitCost.Mul(quantity))
}

// Dispose removes units at the average cost computed before the disposal.
// The whole cost is relieved when the pool is emptied.
func (p *averagePool) Dispose(quantity Quantity) (consumed []Consumption, excess Quantity) {
	if !quantity.IsPositive() || p.quantity.IsZero() {
		return nil, quantity
	}
	taken := p.quantity.min(quantity)
	average := p.cost.Div(p.quantity)
	relieved := p.cost
	if taken.LessThan(p.quantity) {
		relieved = p.cost.Mul(taken).Div(p.quantity)
	}
	consumed = []Consumption{{Quantity: taken, UnitCost: average, Cost: relieved}}

	p.quantity = p.quantity.Sub(taken)
	p.cost = p.cost.Sub(relieved)
	if p.quantity.IsZero() {
		p.cost = M(0, p.cost.Currency())
	}
	return consumed, quantity.Sub(taken)
}
