package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the cbs command line for shell completion.
func Completion() *complete.Command {
	engine := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
		flags["method"] = predict.Set{"fifo", "average"}
		flags["short"] = nil
		return flags
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"positions": {Flags: engine(map[string]complete.Predictor{
				"workers": predict.Something,
				"json":    nil,
				"q":       predict.Set{"$.netInvested.amount", "$.netRealizedPnL.amount", "$.positions[*].instrument"},
			})},
			"history": {Flags: engine(map[string]complete.Predictor{
				"i": predict.Something,
			})},
			"check": {Flags: engine(map[string]complete.Predictor{})},
			"add": {Flags: engine(map[string]complete.Predictor{
				"i":    predict.Something,
				"q":    predict.Something,
				"p":    predict.Something,
				"c":    predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"},
				"d":    predict.Something,
				"sell": nil,
			})},
			"topic":    {Args: predict.Set{"trades", "methods", "short"}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"trades": predict.Files("*.jsonl"),
			"v":      nil,
			"trace":  nil,
		},
	}
}
