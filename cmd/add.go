package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/date"
	"github.com/google/subcommands"
)

type addCmd struct {
	engineFlags
	instrument string
	quantity   string
	price      string
	currency   string
	on         string
	sell       bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "appends a trade to the trades file" }
func (*addCmd) Usage() string {
	return `cbs add -i <instrument> -q <quantity> -p <price> [-c <currency>] [-d <date>] [-sell]

  Appends a trade to the trades file. The trade is refused if it is malformed,
  or if the instrument's trades, including this one, cannot be processed.

Usage Examples:
$ cbs add -i QCOM -q 10 -p 152.3 -c USD -d 2024-01-02
$ cbs add -i QCOM -q 4 -p 170 -c USD -sell

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	f.StringVar(&c.instrument, "i", "", "instrument traded")
	f.StringVar(&c.quantity, "q", "", "number of units traded, always positive")
	f.StringVar(&c.price, "p", "", "price per unit")
	f.StringVar(&c.currency, "c", "", "currency of the price")
	f.StringVar(&c.on, "d", date.Today().String(), "date of the trade")
	f.BoolVar(&c.sell, "sell", false, "the trade is a disposal")
}

// trade builds the trade described by the flags.
func (c *addCmd) trade() (costbasis.TradeEvent, error) {
	on, err := date.Parse(c.on)
	if err != nil {
		return costbasis.TradeEvent{}, fmt.Errorf("invalid date %q: %w", c.on, err)
	}
	q, err := costbasis.ParseQuantity(c.quantity)
	if err != nil {
		return costbasis.TradeEvent{}, fmt.Errorf("invalid quantity %q: %w", c.quantity, err)
	}
	if !q.IsPositive() {
		return costbasis.TradeEvent{}, fmt.Errorf("quantity must be positive, got %v", q)
	}
	if c.sell {
		q = q.Neg()
	}
	p, err := costbasis.ParseMoney(c.price, strings.ToUpper(c.currency))
	if err != nil {
		return costbasis.TradeEvent{}, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	return costbasis.TradeEvent{On: on, Instrument: c.instrument, Quantity: q, Price: p}, nil
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.instrument == "" || c.quantity == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "-i, -q and -p must be provided")
		return subcommands.ExitUsageError
	}
	t, err := c.trade()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	existing, err := DecodeTrades()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}
	var selected []costbasis.TradeEvent
	for _, e := range existing {
		if e.Instrument == t.Instrument {
			selected = append(selected, e)
		}
	}
	selected = append(selected, t)

	engine, closeEngine, err := c.newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closeEngine()

	if _, err := engine.Run(ctx, selected); err != nil {
		fmt.Fprintf(os.Stderr, "Error: trade refused: %v\n", err)
		return subcommands.ExitFailure
	}
	return EncodeTrade(t)
}
