package costbasis

import "fmt"

// MalformedTradeEventError reports a trade that cannot be processed at all.
type MalformedTradeEventError struct {
	Instrument string
	Seq        int // 1-based position in processing order, 0 if unknown.
	Reason     string
}

func (e *MalformedTradeEventError) Error() string {
	if e.Seq > 0 {
		return fmt.Sprintf("malformed trade #%d on %q: %s", e.Seq, e.Instrument, e.Reason)
	}
	return fmt.Sprintf("malformed trade on %q: %s", e.Instrument, e.Reason)
}

// InsufficientLotsError reports a disposal of more units than currently held,
// when short positions are not allowed.
type InsufficientLotsError struct {
	Instrument string
	Seq        int
	Requested  Quantity
	Available  Quantity
}

// Shortfall is the quantity that could not be served by open lots.
func (e *InsufficientLotsError) Shortfall() Quantity { return e.Requested.Sub(e.Available) }

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("trade #%d on %q: cannot dispose of %v units, only %v held (short by %v)",
		e.Seq, e.Instrument, e.Requested, e.Available, e.Shortfall())
}

// CurrencyMismatchError reports an instrument whose currency differs from the
// portfolio reporting currency.
type CurrencyMismatchError struct {
	Instrument string
	Currency   string
	Reporting  string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("instrument %q is in %q but the portfolio reports in %q", e.Instrument, e.Currency, e.Reporting)
}
