// Package textutil holds small text repair helpers used at the playlist
// boundary.
//
// RepairLegacyName re-reads a file name that was written in a legacy Windows
// single-byte code page (typically by a NAS media indexer) as UTF-8 text.
// Mangle replaces bytes that FAT-style filesystems and dumb players choke on.
// Both operate on raw bytes: paths are never coerced through an implicit
// encoding.
package textutil
