// Package cmd implements the CLI application to compute cost basis from a trades file.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/costbasis"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&positionsCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&checkCmd{}, "trades")
	c.Register(&addCmd{}, "trades")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var tradesFile = flag.String("trades", "trades.jsonl", "Path to the trades file (JSONL format)")
var verbose = flag.Bool("v", false, "Log the engine activity to stderr")
var traceSpans = flag.Bool("trace", false, "Print the OpenTelemetry spans to stderr")

// DecodeTrades decodes all trades from the app trades file.
func DecodeTrades() ([]costbasis.TradeEvent, error) {
	return costbasis.DecodeTradesFile(*tradesFile)
}

// EncodeTrade appends a single trade into the app trades file.
func EncodeTrade(t costbasis.TradeEvent) subcommands.ExitStatus {
	filename := *tradesFile
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trades file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := costbasis.EncodeTrade(f, t); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to trades file %q: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Successfully appended trade to %s\n", filename)
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, falling back to the raw markdown.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
