package costbasis

import (
	"slices"

	"github.com/etnz/costbasis/date"
)

// TradeEvent is a single acquisition or disposal of an instrument.
//
// A positive Quantity is an acquisition, a negative one a disposal. Price is
// the transaction price per unit. TradeEvent values are immutable.
type TradeEvent struct {
	On         date.Date
	Instrument string
	Quantity   Quantity
	Price      Money
}

// NewBuy returns the acquisition of quantity units at price each.
func NewBuy(on date.Date, instrument string, quantity float64, price Money) TradeEvent {
	return TradeEvent{On: on, Instrument: instrument, Quantity: Q(quantity), Price: price}
}

// NewSell returns the disposal of quantity units at price each. quantity is
// the positive number of units sold.
func NewSell(on date.Date, instrument string, quantity float64, price Money) TradeEvent {
	return TradeEvent{On: on, Instrument: instrument, Quantity: Q(quantity).Neg(), Price: price}
}

// IsAcquisition reports whether the trade increases the position.
func (t TradeEvent) IsAcquisition() bool { return t.Quantity.IsPositive() }

// IsDisposal reports whether the trade decreases the position.
func (t TradeEvent) IsDisposal() bool { return t.Quantity.IsNegative() }

// Currency returns the currency the trade was priced in.
func (t TradeEvent) Currency() string { return t.Price.Currency() }

// Validate checks the trade on its own. seq is only used to name the trade in
// the error.
func (t TradeEvent) Validate(seq int) error {
	if reason := t.problem(); reason != "" {
		return &MalformedTradeEventError{Instrument: t.Instrument, Seq: seq, Reason: reason}
	}
	return nil
}

// problem describes what makes the trade malformed, "" if nothing.
func (t TradeEvent) problem() string {
	switch {
	case t.Instrument == "":
		return "missing instrument"
	case t.Quantity.IsZero():
		return "quantity must not be zero"
	case t.Price.IsNegative():
		return "price must not be negative, got " + t.Price.value.String()
	}
	return ""
}

func (t TradeEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("on", t.On)
	w.Append("instrument", t.Instrument)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.exact())
	return w.MarshalJSON()
}

// sortTrades sorts trades by date, in place. Trades on the same date keep
// their relative order.
func sortTrades(trades []TradeEvent) {
	slices.SortStableFunc(trades, func(a, b TradeEvent) int { return a.On.Compare(b.On) })
}

// groupByInstrument splits trades per instrument, keeping their relative
// order, and returns the instruments sorted by name.
func groupByInstrument(trades []TradeEvent) (instruments []string, groups map[string][]TradeEvent) {
	groups = make(map[string][]TradeEvent)
	for _, t := range trades {
		if _, exists := groups[t.Instrument]; !exists {
			instruments = append(instruments, t.Instrument)
		}
		groups[t.Instrument] = append(groups[t.Instrument], t)
	}
	slices.Sort(instruments)
	return instruments, groups
}
