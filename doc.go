// Package portfel tracks an investor's holdings across multiple brokerage
// accounts and reports a unified view of the portfolio: current value, cost
// basis, profit and loss, and annualized return.
//
// The core functionalities include:
//   - Position Aggregation: Rolling up per-account holdings of the same
//     instrument into one position, with a cost basis weighted by purchased
//     quantity and invariants recomputed from scratch after every change.
//   - Financial Metrics: Current value, invested amount, P&L, and the
//     annualized internal rate of return (XIRR) over irregular cash-flow
//     dates, for a single position or for the whole portfolio.
//   - Reconciliation: Comparing system-held positions against an externally
//     supplied broker statement, classifying quantity mismatches, value
//     mismatches, and positions missing on either side.
//   - Import Validation: Field-level validation and normalization of inbound
//     position records, with duplicate prevention across import batches.
//   - Data Persistence: Encoding and decoding portfolio state to and from a
//     human-readable, version-controllable JSONL record log.
//
// All monetary amounts and share quantities use fixed-precision decimal
// arithmetic; nothing in the accounting path touches floating point. This
// package is the foundational logic of the `pfl` command-line tool.
package portfel
