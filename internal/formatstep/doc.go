// Package formatstep wires file selection, the modified-file filter and the
// guarded formatter invocation into a single build step.
//
// A run is gated first: aggregator packaging and an explicit skip both end
// the step before any directory is scanned. Otherwise the configured
// directory pairs are scanned, optionally narrowed to the files the working
// copy reports as changed, and the selected files are handed to the entry
// point inside an invocation guard so that its exit call returns control to
// the step instead of ending the process.
package formatstep
