// Package invocation makes it safe to call batch-style entry points that end
// by terminating the process.
//
// Guard reference-counts overlapping and nested invocations and keeps a
// termination trap installed while at least one invocation is active. Entry
// points receive Guard.Exit as their termination primitive; while the trap is
// installed that call unwinds back to the guard instead of exiting.
package invocation
