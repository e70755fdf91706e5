// Package main hosts the mixtape CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and logging once, then hands
// playlist reading, planning, and conversion to the internal packages. `run`
// converts, `plan` shows what a run would do, `encoders` reports the
// available tools, and `history` reads the run ledger.
package main
