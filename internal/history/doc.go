// Package history persists a ledger of conversion runs in SQLite.
//
// Each run gets a UUID and one row holding its target, profile, layout, and
// final counts. Per-item outcomes are appended while the driver executes, so
// an interrupted run still shows how far it got.
package history
