// Package preflight provides readiness checks for the filesystem paths and
// external encoders a conversion run depends on.
//
// The run command calls RunAll before touching the target and refuses to
// start when a required check fails. The encoders command uses CheckEncoders
// to show which tools are installed.
package preflight
