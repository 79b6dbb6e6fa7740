package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/costbasis"
	"github.com/google/subcommands"
)

type checkCmd struct {
	engineFlags
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validates the trades file" }
func (*checkCmd) Usage() string {
	return `cbs check [-method <method>] [-short]

  Reads every trade of the trades file and processes every instrument. All the
  problems found are reported: lines that cannot be decoded, malformed trades,
  disposals of more units than held, and instruments traded in another
  currency than the rest of the portfolio.
`
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trades, decodeErr := DecodeTrades()

	engine, closeEngine, err := c.newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closeEngine()

	r := costbasis.Aggregate(ctx, engine, trades)
	if err := errors.Join(decodeErr, r.Err()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "✅ %d trades on %d instruments are valid.\n", len(trades), len(r.Histories()))
	return subcommands.ExitSuccess
}
