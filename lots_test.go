package costbasis

import (
	"testing"
)

func TestLotQueue_Dispose(t *testing.T) {
	var q LotQueue
	q.Acquire(day(1), Q(10), USD(5))
	q.Acquire(day(2), Q(10), USD(7))

	consumed, excess := q.Dispose(Q(15))
	if !excess.IsZero() {
		t.Errorf("Dispose() excess = %v, want 0", excess)
	}
	want := []Consumption{
		{On: day(1), Quantity: Q(10), UnitCost: USD(5), Cost: USD(50)},
		{On: day(2), Quantity: Q(5), UnitCost: USD(7), Cost: USD(35)},
	}
	if len(consumed) != len(want) {
		t.Fatalf("Dispose() consumed %d lots, want %d", len(consumed), len(want))
	}
	for i, c := range consumed {
		w := want[i]
		if c.On != w.On || !c.Quantity.Equal(w.Quantity) || !c.UnitCost.Equal(w.UnitCost) || !c.Cost.Equal(w.Cost) {
			t.Errorf("consumed[%d] = %+v, want %+v", i, c, w)
		}
	}

	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
	if !q.Quantity().Equal(Q(5)) {
		t.Errorf("Quantity() = %v, want 5", q.Quantity())
	}
	if !q.Cost().Equal(USD(35)) {
		t.Errorf("Cost() = %v, want 35", q.Cost())
	}
	if !q.AverageCost().Equal(USD(7)) {
		t.Errorf("AverageCost() = %v, want 7", q.AverageCost())
	}
	if err := q.verify(); err != nil {
		t.Error(err)
	}
}

func TestLotQueue_DisposeMoreThanHeld(t *testing.T) {
	var q LotQueue
	q.Acquire(day(1), Q(3), USD(1))

	consumed, excess := q.Dispose(Q(5))
	if len(consumed) != 1 || !consumed[0].Quantity.Equal(Q(3)) {
		t.Errorf("Dispose() consumed = %+v, want the whole lot", consumed)
	}
	if !excess.Equal(Q(2)) {
		t.Errorf("Dispose() excess = %v, want 2", excess)
	}
	if q.Len() != 0 || !q.Quantity().IsZero() || !q.Cost().IsZero() {
		t.Errorf("queue not drained: len=%d quantity=%v cost=%v", q.Len(), q.Quantity(), q.Cost())
	}
	if !q.AverageCost().IsZero() {
		t.Errorf("AverageCost() = %v, want 0", q.AverageCost())
	}
}

func TestLotQueue_DisposeEmpty(t *testing.T) {
	var q LotQueue
	consumed, excess := q.Dispose(Q(1))
	if len(consumed) != 0 {
		t.Errorf("Dispose() on empty queue consumed %+v", consumed)
	}
	if !excess.Equal(Q(1)) {
		t.Errorf("Dispose() excess = %v, want 1", excess)
	}
}

func TestLotQueue_IgnoresNonPositiveAcquisitions(t *testing.T) {
	var q LotQueue
	q.Acquire(day(1), Q(0), USD(1))
	q.Acquire(day(1), Q(-1), USD(1))
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

// TestLotQueue_RingBuffer interleaves acquisitions and disposals so that the
// ring wraps around and grows, checking order and running totals at each step.
func TestLotQueue_RingBuffer(t *testing.T) {
	var q LotQueue
	next := 1 // unit cost of the next lot to acquire, also its identity.
	oldest := 1
	for round := 0; round < 50; round++ {
		for i := 0; i < 3; i++ {
			q.Acquire(day(1), Q(2), USD(float64(next)))
			next++
		}
		// consume exactly two lots.
		consumed, excess := q.Dispose(Q(4))
		if !excess.IsZero() {
			t.Fatalf("round %d: unexpected excess %v", round, excess)
		}
		for _, c := range consumed {
			if !c.UnitCost.Equal(USD(float64(oldest))) {
				t.Fatalf("round %d: consumed lot %v, want %d", round, c.UnitCost, oldest)
			}
			oldest++
		}
		if err := q.verify(); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}

	if q.Len() != 50 {
		t.Errorf("Len() = %d, want 50", q.Len())
	}
	want := oldest
	for l := range q.Lots() {
		if !l.UnitCost.Equal(USD(float64(want))) {
			t.Fatalf("Lots() out of order: got %v, want %d", l.UnitCost, want)
		}
		want++
	}
}

func TestAveragePool_Dispose(t *testing.T) {
	var p averagePool
	p.Acquire(day(1), Q(10), USD(5))
	p.Acquire(day(2), Q(10), USD(7))

	consumed, excess := p.Dispose(Q(15))
	if !excess.IsZero() {
		t.Errorf("Dispose() excess = %v, want 0", excess)
	}
	if len(consumed) != 1 {
		t.Fatalf("Dispose() consumed %d parts, want 1", len(consumed))
	}
	c := consumed[0]
	if !c.Quantity.Equal(Q(15)) || !c.UnitCost.Equal(USD(6)) || !c.Cost.Equal(USD(90)) {
		t.Errorf("consumed = %+v, want 15 units at 6", c)
	}
	if !p.Quantity().Equal(Q(5)) || !p.Cost().Equal(USD(30)) {
		t.Errorf("pool = %v units for %v, want 5 units for 30", p.Quantity(), p.Cost())
	}

	// closing the position relieves exactly the remaining cost.
	p.Acquire(day(3), Q(1), USD(1))
	_, excess = p.Dispose(Q(8))
	if !excess.Equal(Q(2)) {
		t.Errorf("Dispose() excess = %v, want 2", excess)
	}
	if !p.Quantity().IsZero() || !p.Cost().IsZero() {
		t.Errorf("pool = %v units for %v, want empty", p.Quantity(), p.Cost())
	}
}

func TestAveragePool_RepeatingAverage(t *testing.T) {
	var p averagePool
	p.Acquire(day(1), Q(1), USD(1))
	p.Acquire(day(1), Q(1), USD(1))
	p.Acquire(day(1), Q(1), USD(2))
	// average is 4/3, a non terminating decimal.
	for i := 0; i < 3; i++ {
		p.Dispose(Q(1))
	}
	if !p.Quantity().IsZero() || !p.Cost().IsZero() {
		t.Errorf("pool = %v units for %v, want no residue", p.Quantity(), p.Cost())
	}
}
