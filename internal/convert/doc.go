// Package convert executes a plan item by item.
//
// For every PlannedItem the Driver skips collisions, existing destinations,
// and missing origins, then creates the destination directory and either
// copies the file or hands it to the encoder dispatcher. Transcodes write to a
// partial sibling that is renamed into place only on success. Failures are
// collected into the Report and never stop the run.
package convert
