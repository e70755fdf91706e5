// Package encoder knows which external tools can read which audio formats and
// how to invoke them.
//
// The Table holds encoders in preference order together with the extensions
// each one reads. Profiles name a target extension plus per-encoder argument
// lists. The Dispatcher picks the first capable encoder for an item and runs
// it through an Executor, capturing stdout and stderr.
//
// Selection happens exactly once per item. When the chosen binary cannot be
// started the item fails with ErrEncoderNotFound; the next encoder in the
// preference list is deliberately not tried.
package encoder
