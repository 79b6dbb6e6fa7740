package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/costbasis"
	"github.com/google/subcommands"
)

const textbook = `{"on":"2025-01-01","instrument":"QCOM","quantity":10,"price":5,"currency":"USD"}
{"on":"2025-01-02","instrument":"QCOM","quantity":10,"price":7,"currency":"USD"}
{"on":"2025-01-03","instrument":"QCOM","action":"sell","quantity":15,"price":10,"currency":"USD"}
`

// useTrades points the app trades file to a temporary file holding content.
func useTrades(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "trades.jsonl")
	if content != "" {
		if err := os.WriteFile(name, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write trades file: %v", err)
		}
	}
	old := *tradesFile
	*tradesFile = name
	t.Cleanup(func() { *tradesFile = old })
	return name
}

// run parses args into cmd's flags and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("invalid flags %q: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

func TestAdd(t *testing.T) {
	name := useTrades(t, textbook)

	if status := run(t, &addCmd{}, "-i", "QCOM", "-q", "5", "-p", "12", "-c", "usd", "-d", "2025-01-04", "-sell"); status != subcommands.ExitSuccess {
		t.Fatalf("add returned %v", status)
	}

	content, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	want := `{"on":"2025-01-04","instrument":"QCOM","quantity":-5,"price":12,"currency":"USD"}`
	if got := lines[len(lines)-1]; got != want {
		t.Errorf("appended line = %s, want %s", got, want)
	}

	trades, err := costbasis.DecodeTradesFile(name)
	if err != nil {
		t.Fatalf("trades file is no longer valid: %v", err)
	}
	if len(trades) != 4 {
		t.Errorf("got %d trades, want 4", len(trades))
	}
}

func TestAdd_CreatesFile(t *testing.T) {
	name := useTrades(t, "")
	if status := run(t, &addCmd{}, "-i", "AAPL", "-q", "2", "-p", "100.5", "-c", "USD", "-d", "2025-01-01"); status != subcommands.ExitSuccess {
		t.Fatalf("add returned %v", status)
	}
	if _, err := os.Stat(name); err != nil {
		t.Errorf("trades file not created: %v", err)
	}
}

func TestAdd_Refused(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"missing price", []string{"-i", "QCOM", "-q", "1"}, subcommands.ExitUsageError},
		{"negative quantity", []string{"-i", "QCOM", "-q", "-1", "-p", "10"}, subcommands.ExitUsageError},
		{"bad date", []string{"-i", "QCOM", "-q", "1", "-p", "10", "-d", "yesterday-ish"}, subcommands.ExitUsageError},
		{"more than held", []string{"-i", "QCOM", "-q", "6", "-p", "10", "-c", "USD", "-d", "2025-01-04", "-sell"}, subcommands.ExitFailure},
		{"other currency", []string{"-i", "QCOM", "-q", "1", "-p", "10", "-c", "EUR", "-d", "2025-01-04"}, subcommands.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name := useTrades(t, textbook)
			if got := run(t, &addCmd{}, tc.args...); got != tc.want {
				t.Errorf("add %q returned %v, want %v", tc.args, got, tc.want)
			}
			content, _ := os.ReadFile(name)
			if string(content) != textbook {
				t.Errorf("trades file modified:\n%s", content)
			}
		})
	}
}

func TestAdd_Short(t *testing.T) {
	useTrades(t, textbook)
	if status := run(t, &addCmd{}, "-short", "-i", "QCOM", "-q", "6", "-p", "10", "-c", "USD", "-d", "2025-01-04", "-sell"); status != subcommands.ExitSuccess {
		t.Errorf("add -short returned %v", status)
	}
}

func TestCheck(t *testing.T) {
	useTrades(t, textbook)
	if status := run(t, &checkCmd{}); status != subcommands.ExitSuccess {
		t.Errorf("check returned %v", status)
	}

	useTrades(t, textbook+`{"on":"2025-01-04","instrument":"QCOM","quantity":-6,"price":10,"currency":"USD"}
not json
`)
	if status := run(t, &checkCmd{}); status != subcommands.ExitFailure {
		t.Errorf("check returned %v, want failure", status)
	}
}

func TestHistory_RequiresInstrument(t *testing.T) {
	useTrades(t, textbook)
	if status := run(t, &historyCmd{}); status != subcommands.ExitUsageError {
		t.Errorf("history returned %v, want usage error", status)
	}
	if status := run(t, &historyCmd{}, "-i", "AAPL"); status != subcommands.ExitFailure {
		t.Errorf("history on unknown instrument returned %v, want failure", status)
	}
}

func TestPositions_UnknownMethod(t *testing.T) {
	useTrades(t, textbook)
	if status := run(t, &positionsCmd{}, "-method", "lifo"); status != subcommands.ExitUsageError {
		t.Errorf("positions returned %v, want usage error", status)
	}
}

func TestQuery(t *testing.T) {
	trades, err := costbasis.DecodeTrades("textbook", strings.NewReader(textbook))
	if err != nil {
		t.Fatal(err)
	}
	r := costbasis.Aggregate(context.Background(), costbasis.NewEngine(costbasis.WithMethod(costbasis.AverageCost)), trades)

	tests := []struct {
		path string
		want string
	}{
		{"$.netInvested.amount", "30"},
		{"$.netRealizedPnL.amount", "60"},
		{"$.positions[*].instrument", `"QCOM"`},
		{"$.method", `"average"`},
	}
	for _, tc := range tests {
		got, err := query(r, tc.path)
		if err != nil {
			t.Errorf("query(%q) error = %v", tc.path, err)
			continue
		}
		if string(got) != tc.want {
			t.Errorf("query(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"positions", "history", "check", "add"} {
		sub, ok := c.Sub[name]
		if !ok {
			t.Errorf("no completion for %q", name)
			continue
		}
		if _, ok := sub.Flags["method"]; !ok {
			t.Errorf("%q completion misses -method", name)
		}
	}
}
