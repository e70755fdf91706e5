// Package targetdir inspects and guards the directory a run writes into.
//
// It answers whether the target is empty, takes an exclusive per-target lock
// under the state directory so two runs cannot interleave writes, and reports
// whether the target sits on a FAT-family filesystem that cannot store
// arbitrary filename bytes.
package targetdir
