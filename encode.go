package costbasis

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/costbasis/date"
	"github.com/shopspring/decimal"
)

// Trades are persisted in a JSONL file, one trade per line, so that the file
// stays human-readable and git-friendly:
//
//	{"on":"2024-01-02","instrument":"QCOM","quantity":10,"price":152.3,"currency":"USD"}
//	{"on":"2024-03-05","instrument":"QCOM","quantity":-4,"price":170,"currency":"USD"}
//
// A broker export that gives unsigned quantities can use an "action" of
// "buy" or "sell" instead of a signed quantity:
//
//	{"on":"2024-03-05","instrument":"QCOM","action":"sell","quantity":4,"price":170}

// jtrade is the object read from a trades file using the json parser.
type jtrade struct {
	On         date.Date       `json:"on"`
	Instrument string          `json:"instrument"`
	Action     string          `json:"action"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

// trade converts the parsed line into a TradeEvent, resolving the action.
func (j jtrade) trade() (TradeEvent, error) {
	q := Quantity{value: j.Quantity}
	switch strings.ToLower(j.Action) {
	case "":
	case "buy":
		if !q.IsPositive() {
			return TradeEvent{}, fmt.Errorf("action %q requires a positive quantity, got %v", j.Action, q)
		}
	case "sell":
		if !q.IsPositive() {
			return TradeEvent{}, fmt.Errorf("action %q requires a positive quantity, got %v", j.Action, q)
		}
		q = q.Neg()
	default:
		return TradeEvent{}, fmt.Errorf("unknown action %q, want \"buy\" or \"sell\"", j.Action)
	}
	return TradeEvent{
		On:         j.On,
		Instrument: j.Instrument,
		Quantity:   q,
		Price:      Money{value: j.Price, cur: j.Currency},
	}, nil
}

// DecodeTrades reads trades from a JSONL stream. filename is for error
// messages only.
//
// Empty lines are ignored. Every line is decoded even after a failure: the
// returned error joins the problems of all lines, and the trades contain the
// lines that could be decoded, in file order.
func DecodeTrades(filename string, r io.Reader) ([]TradeEvent, error) {
	var trades []TradeEvent
	var errs []error

	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.DisallowUnknownFields()
		var jt jtrade
		if err := dec.Decode(&jt); err != nil {
			errs = append(errs, fmt.Errorf("parse error %s:%d: not a correct trade: %w", filename, i, err))
			continue
		}
		// a line holds exactly one trade.
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			errs = append(errs, fmt.Errorf("parse error %s:%d: unexpected data after the trade", filename, i))
			continue
		}
		t, err := jt.trade()
		if err != nil {
			errs = append(errs, fmt.Errorf("parse error %s:%d: %w", filename, i, err))
			continue
		}
		trades = append(trades, t)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("cannot read %q: %w", filename, err))
	}
	return trades, errors.Join(errs...)
}

// DecodeTradesFile reads trades from the JSONL file at path.
func DecodeTradesFile(path string) ([]TradeEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", path, err)
	}
	defer f.Close()
	return DecodeTrades(path, f)
}

// EncodeTrade writes t as a single JSONL line, in canonical form: signed
// quantity, no action.
func EncodeTrade(w io.Writer, t TradeEvent) error {
	var o jsonObjectWriter
	o.Optional("on", t.On)
	o.Append("instrument", t.Instrument)
	o.Append("quantity", t.Quantity)
	o.Append("price", json.Number(t.Price.value.String()))
	o.Optional("currency", t.Price.cur)
	line, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}
