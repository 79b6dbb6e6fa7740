package costbasis

import (
	"time"

	"github.com/etnz/costbasis/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// day returns the nth day of January 2025.
func day(n int) date.Date { return date.New(2025, time.January, n) }

// buy and sell are shorthands for trades on QCOM priced in USD.
func buy(on int, quantity, price float64) TradeEvent {
	return NewBuy(day(on), "QCOM", quantity, USD(price))
}

func sell(on int, quantity, price float64) TradeEvent {
	return NewSell(day(on), "QCOM", quantity, USD(price))
}

// textbook is the reference scenario: two lots, then a disposal spanning both.
func textbook() []TradeEvent {
	return []TradeEvent{
		buy(1, 10, 5),
		buy(2, 10, 7),
		sell(3, 15, 10),
	}
}
