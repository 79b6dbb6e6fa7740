package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/costbasis"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// engineFlags are the flags shared by the commands that run the engine.
type engineFlags struct {
	method string
	short  bool
}

func (e *engineFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&e.method, "method", costbasis.FIFO.String(), "Cost basis method (fifo, average)")
	f.BoolVar(&e.short, "short", false, "Open a short position on over-disposal instead of rejecting the trade")
}

// newEngine builds the engine from the flags, with the logger and tracer
// selected by the global flags. The returned func flushes them and must be
// called before exiting.
func (e *engineFlags) newEngine() (*costbasis.Engine, func(), error) {
	method, err := costbasis.ParseCostBasisMethod(e.method)
	if err != nil {
		return nil, nil, err
	}
	opts := []costbasis.Option{costbasis.WithMethod(method)}
	if e.short {
		opts = append(opts, costbasis.WithShortPolicy(costbasis.AllowShort))
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, nil, fmt.Errorf("cannot create logger: %w", err)
		}
	}
	opts = append(opts, costbasis.WithLogger(logger))

	closers := []func(){func() { _ = logger.Sync() }}
	if *traceSpans {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		opts = append(opts, costbasis.WithTracer(tp.Tracer("github.com/etnz/costbasis")))
		closers = append(closers, func() { _ = tp.Shutdown(context.Background()) })
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return costbasis.NewEngine(opts...), closeAll, nil
}
