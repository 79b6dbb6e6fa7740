package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/costbasis"
	"github.com/etnz/costbasis/renderer"
	"github.com/google/subcommands"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	engineFlags
	workers int
	json    bool
	query   string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "final position of every instrument and portfolio totals" }
func (*positionsCmd) Usage() string {
	return `cbs positions [-method <method>] [-short] [-workers <n>] [-json] [-q <jsonpath>]

  Processes the trades of every instrument found in the trades file and
  displays, for each one, the open quantity, the average cost, the cost basis
  and the realized profit or loss. The portfolio totals sum every instrument
  that could be processed. Instruments with invalid trades are listed apart.

Usage Examples:
# Net invested amount as a bare number.
$ cbs positions -q '$.netInvested.amount'

`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	f.IntVar(&c.workers, "workers", 0, "Number of instruments processed concurrently. Defaults to the number of CPUs.")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
	f.StringVar(&c.query, "q", "", "Print only the part of the JSON result selected by this JSONPath expression")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trades, err := DecodeTrades()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}

	engine, closeEngine, err := c.newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closeEngine()

	r := costbasis.Aggregate(ctx, engine, trades, costbasis.WithWorkers(c.workers))

	switch {
	case c.query != "":
		out, err := query(r, c.query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating %q: %v\n", c.query, err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
	case c.json:
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
	default:
		printMarkdown(renderer.PositionsMarkdown(r))
	}

	if err := r.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Some instruments were excluded:\n%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// query evaluates the JSONPath expression path on the JSON form of v.
func query(v any, path string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	val, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil, err
	}
	// jsonpath returns a list for wildcard queries, keep single answers bare.
	if list, ok := val.([]any); ok && len(list) == 1 {
		val = list[0]
	}
	return json.MarshalIndent(val, "", "  ")
}
