// Command cbs computes the cost basis and realized profit or loss of a
// portfolio from a trades file.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/costbasis/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "cbs")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell for completion.
	cmd.Completion().Complete("cbs")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
