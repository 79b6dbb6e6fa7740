// Package costbasis computes the cost basis and realized gains of positions
// from a chronological list of trades.
//
// The core functionalities include:
//   - Lot Queue: open lots of an instrument in acquisition order, with
//     running quantity and cost totals.
//   - Cost-Flow Engine: applies trades to the open lots under the FIFO or
//     the weighted-average method, and records a Snapshot after each trade.
//     Over-disposals are either rejected or open a short position.
//   - Portfolio Aggregation: runs the engine on every instrument,
//     concurrently, and sums net invested capital and net realized P/L.
//   - Persistence: trades are read from and written to human-readable JSONL
//     files.
//
// All amounts are exact decimals. This package serves as the foundational
// logic for the `cbs` command-line tool.
package costbasis
