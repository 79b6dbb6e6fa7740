package costbasis

// ClosedLot is a slice of a lot closed by a trade, with the profit or loss it
// realized.
type ClosedLot struct {
	Consumption
	Proceeds Money // value of the closing trade for Quantity units
	Realized Money
	Short    bool // true when a short lot was covered by an acquisition
}

func (c ClosedLot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("opened", c.On)
	w.Append("quantity", c.Quantity)
	w.Append("unitCost", c.UnitCost.exact())
	w.Append("cost", c.Cost)
	w.Append("proceeds", c.Proceeds)
	w.Append("realized", c.Realized)
	w.Optional("short", c.Short)
	return w.MarshalJSON()
}

// Snapshot is the state of a position right after a trade has been applied.
type Snapshot struct {
	Seq            int        // 1-based index of the trade in processing order, 0 before any trade.
	Trade          TradeEvent // the trade that produced this snapshot.
	OpenQuantity   Quantity   // negative for a short position.
	// AverageCost is the cost basis per open unit, zero when flat. It is
	// rounded to 16 decimal places; TotalCostBasis is the exact amount.
	AverageCost    Money
	RealizedPnL    Money      // cumulative since the first trade.
	TotalCostBasis Money      // cost attributed to the open units.
	Closed         []ClosedLot
}

// Short reports whether the position is short.
func (s Snapshot) Short() bool { return s.OpenQuantity.IsNegative() }

// Flat reports whether no unit is held.
func (s Snapshot) Flat() bool { return s.OpenQuantity.IsZero() }

// Realized returns the profit or loss realized by this snapshot's trade only.
func (s Snapshot) Realized() Money {
	var total Money
	for _, c := range s.Closed {
		total = total.Add(c.Realized)
	}
	return total
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("seq", s.Seq)
	if s.Seq > 0 {
		w.Append("trade", s.Trade)
	}
	w.Append("openQuantity", s.OpenQuantity)
	w.Append("averageCost", s.AverageCost.exact())
	w.Append("realizedPnL", s.RealizedPnL)
	w.Append("totalCostBasis", s.TotalCostBasis)
	w.Optional("short", s.Short())
	if len(s.Closed) > 0 {
		w.Append("closed", s.Closed)
	}
	return w.MarshalJSON()
}

// History is the append-only sequence of snapshots of one instrument.
type History struct {
	instrument string
	currency   string
	method     CostBasisMethod
	snapshots  []Snapshot
}

// Instrument returns the instrument the history is about.
func (h *History) Instrument() string { return h.instrument }

// Currency returns the currency the instrument is traded in, "" if unknown.
func (h *History) Currency() string { return h.currency }

// Method returns the cost basis method used to compute the history.
func (h *History) Method() CostBasisMethod { return h.method }

// Snapshots returns all snapshots, in processing order.
func (h *History) Snapshots() []Snapshot { return h.snapshots }

// Len returns the number of snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Final returns the last snapshot, or a zero snapshot if there is none.
func (h *History) Final() Snapshot {
	if len(h.snapshots) == 0 {
		return Snapshot{}
	}
	return h.snapshots[len(h.snapshots)-1]
}

// RealizedPnL returns the cumulative realized P/L after each trade.
func (h *History) RealizedPnL() []Money {
	out := make([]Money, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.RealizedPnL
	}
	return out
}

func (h *History) append(s Snapshot) { h.snapshots = append(h.snapshots, s) }

func (h *History) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("instrument", h.instrument)
	w.Optional("currency", h.currency)
	w.Append("method", h.method)
	w.Append("snapshots", h.snapshots)
	return w.MarshalJSON()
}
