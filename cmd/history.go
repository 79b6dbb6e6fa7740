package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	engineFlags
	instrument string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the position of an instrument after each trade" }
func (*historyCmd) Usage() string {
	return `cbs history -i <instrument> [-method <method>] [-short]

  Displays the state of the position after every trade on an instrument, and
  the lots closed by each trade. When a trade is rejected, the history up to
  that trade is displayed along with the error.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	f.StringVar(&c.instrument, "i", "", "instrument to report on")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.instrument == "" {
		fmt.Fprintln(os.Stderr, "-i must be provided")
		return subcommands.ExitUsageError
	}

	trades, err := DecodeTrades()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}
	var selected []costbasis.TradeEvent
	for _, t := range trades {
		if t.Instrument == c.instrument {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		fmt.Fprintf(os.Stderr, "no trade on %q in %s\n", c.instrument, *tradesFile)
		return subcommands.ExitFailure
	}

	engine, closeEngine, err := c.newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closeEngine()

	h, err := engine.Run(ctx, selected)
	printMarkdown(renderer.HistoryMarkdown(h))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
