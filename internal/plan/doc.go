// Package plan turns playlist records into a conversion plan.
//
// Planning happens in three pure steps:
//
//  1. Dedup collapses repeated (origin, playlist) records into ordered
//     groups, one per distinct origin path, preserving first-seen order.
//  2. Translator optionally rewrites a path prefix so a plan built on one
//     machine can be executed on another that mounts the library elsewhere.
//  3. Plan computes a destination path and an action (copy or transcode) for
//     every record according to the layout mode, the mangle switch, and the
//     target profile.
//
// Nothing in this package touches the filesystem, reads the clock, or depends
// on map iteration order: identical inputs always yield identical plans.
// Paths are treated as opaque byte strings; decoding happens once, at the
// playlist reader boundary.
package plan
