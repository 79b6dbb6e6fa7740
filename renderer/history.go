package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/costbasis"
)

// HistoryMarkdown renders one row per trade of h, with the state of the
// position right after the trade.
func HistoryMarkdown(h *costbasis.History) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s History\n\n", h.Instrument())
	fmt.Fprintf(&b, "Method: %s\n\n", h.Method())

	fmt.Fprintln(&b, "| # | Date | Trade | Price | Open | Average Cost | Cost Basis | Realized | Realized P/L |")
	fmt.Fprintln(&b, "|---:|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, s := range h.Snapshots() {
		if s.Seq == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Seq,
			s.Trade.On,
			signed(s.Trade.Quantity),
			s.Trade.Price,
			s.OpenQuantity,
			s.AverageCost,
			s.TotalCostBasis,
			s.Realized().SignedString(),
			s.RealizedPnL.SignedString(),
		)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Closed Lots\n\n")
		fmt.Fprintln(w, "| # | Opened | Quantity | Unit Cost | Cost | Proceeds | Realized |")
		fmt.Fprintln(w, "|---:|:---|---:|---:|---:|---:|---:|")
		n := 0
		for _, s := range h.Snapshots() {
			for _, c := range s.Closed {
				n++
				quantity := c.Quantity.String()
				if c.Short {
					quantity += " (short)"
				}
				fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %s | %s |\n",
					s.Seq,
					c.On,
					quantity,
					c.UnitCost,
					c.Cost,
					c.Proceeds,
					c.Realized.SignedString(),
				)
			}
		}
		return n > 0
	})
	return b.String()
}

// signed returns q with an explicit sign for acquisitions.
func signed(q costbasis.Quantity) string {
	if q.IsPositive() {
		return "+" + q.String()
	}
	return q.String()
}
