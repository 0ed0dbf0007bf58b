// Package database provides SQLite-based storage for coverage history.
//
// This package implements the HistoryDB, which stores one row per
// recorded conversion: the run's label, totals and per-package rates.
// The history command reads these rows to show how coverage moved
// between runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
