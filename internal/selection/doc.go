// Package selection computes the set of source files a format run must touch.
//
// Scanner walks a source directory and compares each matching file against
// its artifacts in a paired output directory, keeping only stale files unless
// staleness filtering is disabled. CandidateFileSet unions scan results by
// absolute path and materializes them in lexicographic order. ArtifactRecorder
// writes the artifacts for successfully processed files so later scans skip
// them until their sources change.
package selection
