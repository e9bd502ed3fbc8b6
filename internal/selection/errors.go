package selection

import "fmt"

const (
	scanErrorTemplateConstant     = "error scanning source path '%s' for files to reformat: %v"
	artifactErrorTemplateConstant = "error recording artifact '%s' for '%s': %v"
)

// ScanError reports a directory walk that could not complete.
type ScanError struct {
	Directory string
	Cause     error
}

// Error describes the failed scan including the offending directory.
func (scanError ScanError) Error() string {
	return fmt.Sprintf(scanErrorTemplateConstant, scanError.Directory, scanError.Cause)
}

// Unwrap exposes the underlying filesystem failure.
func (scanError ScanError) Unwrap() error {
	return scanError.Cause
}

// ArtifactError reports an artifact that could not be written after a successful run.
type ArtifactError struct {
	SourcePath   string
	ArtifactPath string
	Cause        error
}

// Error describes the failed write including both paths.
func (artifactError ArtifactError) Error() string {
	return fmt.Sprintf(artifactErrorTemplateConstant, artifactError.ArtifactPath, artifactError.SourcePath, artifactError.Cause)
}

// Unwrap exposes the underlying filesystem failure.
func (artifactError ArtifactError) Unwrap() error {
	return artifactError.Cause
}
