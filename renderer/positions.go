// Package renderer turns computed positions into markdown reports.
package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/costbasis"
)

// PositionsMarkdown renders the final position of every instrument of r, the
// portfolio totals and the instruments that could not be processed.
func PositionsMarkdown(r *costbasis.PortfolioResult) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Positions\n\n")
	fmt.Fprintf(&b, "Method: %s\n\n", r.Method())

	fmt.Fprintln(&b, "| Instrument | Open | Average Cost | Cost Basis | Realized P/L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, h := range r.Histories() {
		final := h.Final()
		open := final.OpenQuantity.String()
		if final.Short() {
			open += " (short)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			h.Instrument(),
			open,
			final.AverageCost,
			final.TotalCostBasis,
			final.RealizedPnL.SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **%s** | | | **%s** | **%s** |\n",
		"Total",
		r.NetInvested(),
		r.NetRealizedPnL().SignedString(),
	)

	ConditionalBlock(&b, func(w io.Writer) bool {
		failures := r.Failures()
		instruments := make([]string, 0, len(failures))
		for i := range failures {
			instruments = append(instruments, i)
		}
		slices.Sort(instruments)

		fmt.Fprint(w, "\n## Excluded Instruments\n\n")
		for _, i := range instruments {
			fmt.Fprintf(w, "- **%s**: %v\n", i, failures[i])
		}
		return len(instruments) > 0
	})

	return b.String()
}
