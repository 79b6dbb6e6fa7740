package costbasis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PortfolioResult sums the final positions of several instruments.
// It is read-only once returned by Aggregate.
type PortfolioResult struct {
	method         CostBasisMethod
	currency       string
	netInvested    Money
	netRealizedPnL Money
	histories      []*History // successful instruments, sorted by name.
	failures       map[string]error
}

// Method returns the cost-flow method used for every instrument.
func (r *PortfolioResult) Method() CostBasisMethod { return r.method }

// Currency returns the reporting currency, "" if unknown.
func (r *PortfolioResult) Currency() string { return r.currency }

// NetInvested is the sum of the cost basis of every instrument's final position.
func (r *PortfolioResult) NetInvested() Money { return r.netInvested }

// NetRealizedPnL is the sum of every instrument's cumulative realized P/L.
func (r *PortfolioResult) NetRealizedPnL() Money { return r.netRealizedPnL }

// Histories returns the histories of the instruments that were successfully
// processed, sorted by instrument.
func (r *PortfolioResult) Histories() []*History { return r.histories }

// History returns the history of instrument, if it was successfully processed.
func (r *PortfolioResult) History(instrument string) (*History, bool) {
	for _, h := range r.histories {
		if h.instrument == instrument {
			return h, true
		}
	}
	return nil, false
}

// Failures returns the error of each instrument that could not be processed.
func (r *PortfolioResult) Failures() map[string]error { return r.failures }

// Err joins the failures, sorted by instrument. It is nil when every
// instrument was processed.
func (r *PortfolioResult) Err() error {
	instruments := make([]string, 0, len(r.failures))
	for i := range r.failures {
		instruments = append(instruments, i)
	}
	slices.Sort(instruments)
	errs := make([]error, 0, len(instruments))
	for _, i := range instruments {
		errs = append(errs, fmt.Errorf("%s: %w", i, r.failures[i]))
	}
	return errors.Join(errs...)
}

func (r *PortfolioResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("method", r.method)
	w.Optional("currency", r.currency)
	w.Append("netInvested", r.netInvested)
	w.Append("netRealizedPnL", r.netRealizedPnL)

	type position struct {
		Instrument string   `json:"instrument"`
		Final      Snapshot `json:"final"`
	}
	positions := make([]position, 0, len(r.histories))
	for _, h := range r.histories {
		positions = append(positions, position{Instrument: h.instrument, Final: h.Final()})
	}
	w.Append("positions", positions)
	if len(r.failures) > 0 {
		failures := make(map[string]string, len(r.failures))
		for i, err := range r.failures {
			failures[i] = err.Error()
		}
		w.Append("failures", failures)
	}
	return w.MarshalJSON()
}

type aggregateConfig struct {
	workers int
}

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateConfig)

// WithWorkers bounds the number of instruments processed concurrently.
// Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) AggregateOption { return func(c *aggregateConfig) { c.workers = n } }

// Aggregate runs the engine on each instrument found in trades and sums the
// final positions.
//
// Instruments are independent: a failing instrument is reported in the
// result's Failures and excluded from the sums, the others are still
// processed. The sums do not depend on the order in which instruments are
// processed.
func Aggregate(ctx context.Context, engine *Engine, trades []TradeEvent, opts ...AggregateOption) *PortfolioResult {
	cfg := aggregateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	instruments, groups := groupByInstrument(trades)
	ctx, span := engine.tracer.Start(ctx, "costbasis.Aggregate", trace.WithAttributes(
		attribute.String("method", engine.method.String()),
		attribute.Int("instruments", len(instruments)),
		attribute.Int("trades", len(trades)),
	))
	defer span.End()

	// each goroutine owns one slot.
	histories := make([]*History, len(instruments))
	errs := make([]error, len(instruments))

	var g errgroup.Group
	g.SetLimit(cfg.workers)
	for i, instrument := range instruments {
		g.Go(func() error {
			histories[i], errs[i] = engine.Run(ctx, groups[instrument])
			return nil
		})
	}
	_ = g.Wait() // instrument errors are collected in errs.

	r := &PortfolioResult{
		method:   engine.method,
		failures: make(map[string]error),
	}
	for i, instrument := range instruments {
		h, err := histories[i], errs[i]
		if err == nil && r.currency != "" && h.currency != "" && h.currency != r.currency {
			err = &CurrencyMismatchError{Instrument: instrument, Currency: h.currency, Reporting: r.currency}
		}
		if err != nil {
			engine.logger.Warn("instrument excluded from portfolio", zap.String("instrument", instrument), zap.Error(err))
			r.failures[instrument] = err
			continue
		}
		if r.currency == "" {
			r.currency = h.currency
		}
		final := h.Final()
		r.netInvested = r.netInvested.Add(final.TotalCostBasis)
		r.netRealizedPnL = r.netRealizedPnL.Add(final.RealizedPnL)
		r.histories = append(r.histories, h)
	}
	span.SetAttributes(attribute.Int("failures", len(r.failures)))

	engine.logger.Info("portfolio aggregated",
		zap.Int("instruments", len(r.histories)),
		zap.Int("failures", len(r.failures)),
		zap.Stringer("netInvested", r.netInvested),
		zap.Stringer("netRealizedPnL", r.netRealizedPnL),
	)
	return r
}
