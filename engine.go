package costbasis

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Engine computes positions from trades using a cost-flow method.
//
// An Engine holds configuration only; it is safe for concurrent use.
type Engine struct {
	method CostBasisMethod
	policy ShortPolicy
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMethod sets the cost-flow method. Defaults to FIFO.
func WithMethod(m CostBasisMethod) Option { return func(e *Engine) { e.method = m } }

// WithShortPolicy sets what happens on over-disposal. Defaults to RejectShortfall.
func WithShortPolicy(p ShortPolicy) Option { return func(e *Engine) { e.policy = p } }

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithTracer sets the tracer. Defaults to a no-op tracer.
func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// NewEngine returns an engine configured with opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		method: FIFO,
		policy: RejectShortfall,
		logger: zap.NewNop(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Method returns the engine's cost-flow method.
func (e *Engine) Method() CostBasisMethod { return e.method }

// ShortPolicy returns the engine's over-disposal policy.
func (e *Engine) ShortPolicy() ShortPolicy { return e.policy }

// Run processes the trades of a single instrument in chronological order and
// returns one snapshot per trade.
//
// Trades on the same date are processed in input order. The input slice is
// not modified. No trade yields a history with a single, all zero, snapshot.
//
// On error, the returned history holds the snapshots computed before the
// failing trade.
func (e *Engine) Run(ctx context.Context, trades []TradeEvent) (*History, error) {
	instrument := ""
	if len(trades) > 0 {
		instrument = trades[0].Instrument
	}
	_, span := e.tracer.Start(ctx, "costbasis.Run", trace.WithAttributes(
		attribute.String("instrument", instrument),
		attribute.String("method", e.method.String()),
		attribute.Int("trades", len(trades)),
	))
	defer span.End()

	h := &History{instrument: instrument, method: e.method}
	if len(trades) == 0 {
		h.append(Snapshot{})
		return h, nil
	}

	sorted := slices.Clone(trades)
	sortTrades(sorted)

	p := e.NewPosition(instrument)
	for _, t := range sorted {
		s, err := p.Apply(t)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.Warn("trade rejected", zap.String("instrument", instrument), zap.Error(err))
			h.currency = p.currency
			return h, err
		}
		h.append(s)
	}
	h.currency = p.currency

	final := h.Final()
	e.logger.Info("instrument processed",
		zap.String("instrument", instrument),
		zap.Stringer("method", e.method),
		zap.Int("trades", len(sorted)),
		zap.Stringer("open", final.OpenQuantity),
		zap.Stringer("costBasis", final.TotalCostBasis),
		zap.Stringer("realized", final.RealizedPnL),
	)
	return h, nil
}

// Position is the running state of one instrument. Trades must be applied in
// chronological order.
type Position struct {
	instrument string
	currency   string
	policy     ShortPolicy
	logger     *zap.Logger

	seq      int
	long     inventory // open long lots
	short    inventory // open short lots, at their sale price. Only one side is non empty.
	realized Money
}

// NewPosition returns an empty position on instrument.
func (e *Engine) NewPosition(instrument string) *Position {
	return &Position{
		instrument: instrument,
		policy:     e.policy,
		logger:     e.logger,
		long:       newInventory(e.method),
		short:      newInventory(e.method),
	}
}

// Snapshot returns the current state of the position, without trade.
func (p *Position) Snapshot() Snapshot {
	open := p.long.Quantity().Sub(p.short.Quantity())
	basis := p.long.Cost().Sub(p.short.Cost())
	average := M(0, basis.Currency())
	if !open.IsZero() {
		average = basis.Div(open)
	}
	return Snapshot{
		Seq:            p.seq,
		OpenQuantity:   open,
		AverageCost:    average,
		RealizedPnL:    p.realized,
		TotalCostBasis: basis,
	}
}

// Apply applies the next trade and returns the resulting snapshot.
//
// A failing trade leaves the position unchanged.
func (p *Position) Apply(t TradeEvent) (Snapshot, error) {
	seq := p.seq + 1
	if reason := t.problem(); reason != "" {
		return Snapshot{}, &MalformedTradeEventError{Instrument: p.instrument, Seq: seq, Reason: reason}
	}
	if t.Instrument != p.instrument {
		return Snapshot{}, &MalformedTradeEventError{Instrument: p.instrument, Seq: seq,
			Reason: "trade on another instrument " + t.Instrument}
	}
	if c := t.Currency(); c != "" && p.currency != "" && c != p.currency {
		return Snapshot{}, &MalformedTradeEventError{Instrument: p.instrument, Seq: seq,
			Reason: "trade in " + c + " but instrument is traded in " + p.currency}
	}

	var closed []ClosedLot
	if t.IsAcquisition() {
		closed = p.acquire(t)
	} else {
		var err error
		if closed, err = p.dispose(t, seq); err != nil {
			return Snapshot{}, err
		}
	}
	p.seq = seq
	if p.currency == "" {
		p.currency = t.Currency()
	}
	for _, c := range closed {
		p.realized = p.realized.Add(c.Realized)
	}

	s := p.Snapshot()
	s.Trade = t
	s.Closed = closed
	p.logger.Debug("trade applied",
		zap.String("instrument", p.instrument),
		zap.Int("seq", seq),
		zap.Stringer("quantity", t.Quantity),
		zap.Stringer("price", t.Price),
		zap.Stringer("open", s.OpenQuantity),
		zap.Stringer("averageCost", s.AverageCost),
		zap.Stringer("realized", s.RealizedPnL),
	)
	return s, nil
}

// acquire covers open short lots first, then opens a long lot with the rest.
func (p *Position) acquire(t TradeEvent) []ClosedLot {
	remaining := t.Quantity
	var closed []ClosedLot
	if shorted := p.short.Quantity(); shorted.IsPositive() {
		consumed, _ := p.short.Dispose(remaining.min(shorted))
		for _, c := range consumed {
			cost := t.Price.Mul(c.Quantity)
			// a short lot's cost is what the sale brought in.
			closed = append(closed, ClosedLot{Consumption: c, Proceeds: c.Cost, Realized: c.Cost.Sub(cost), Short: true})
			remaining = remaining.Sub(c.Quantity)
		}
	}
	p.long.Acquire(t.On, remaining, t.Price)
	return closed
}

// dispose consumes open long lots, and opens a short lot with the excess
// when allowed.
func (p *Position) dispose(t TradeEvent, seq int) ([]ClosedLot, error) {
	quantity := t.Quantity.Neg()
	held := p.long.Quantity()
	if quantity.GreaterThan(held) && p.policy != AllowShort {
		return nil, &InsufficientLotsError{Instrument: p.instrument, Seq: seq, Requested: quantity, Available: held}
	}

	consumed, excess := p.long.Dispose(quantity)
	closed := make([]ClosedLot, 0, len(consumed))
	for _, c := range consumed {
		proceeds := t.Price.Mul(c.Quantity)
		closed = append(closed, ClosedLot{Consumption: c, Proceeds: proceeds, Realized: proceeds.Sub(c.Cost)})
	}
	if excess.IsPositive() {
		p.logger.Debug("opening short position",
			zap.String("instrument", p.instrument),
			zap.Int("seq", seq),
			zap.Stringer("quantity", excess),
		)
		p.short.Acquire(t.On, excess, t.Price)
	}
	return closed, nil
}
