package selection

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	artifactDirectoryPermissionsConstant = 0o755
	artifactFilePermissionsConstant      = 0o644
	parentDirectoryReferenceConstant     = ".."
	artifactsRecordedMessageConstant     = "recorded artifacts for reformatted files"
	logFieldArtifactCountConstant        = "artifact_count"
)

// ArtifactRecorder writes the output tree entries that Scan compares sources against.
type ArtifactRecorder struct {
	logger *zap.Logger
}

// NewArtifactRecorder constructs an ArtifactRecorder. A nil logger discards output.
func NewArtifactRecorder(logger *zap.Logger) *ArtifactRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactRecorder{logger: logger}
}

// Record copies every file of files to each artifact path its directory pair maps it to, so a later Scan
// without includeStale skips it until the source changes again. A file belongs to the pair with the deepest
// source directory containing it. Files outside every pair and pairs without an output directory are ignored.
func (recorder *ArtifactRecorder) Record(pairs []DirectoryPair, files CandidateFileSet) error {
	resolvedPairs, resolveError := resolvePairs(pairs)
	if resolveError != nil {
		return resolveError
	}

	recordedCount := 0
	for _, sourcePath := range files.Sorted() {
		owner, relativePath, owned := ownerOf(resolvedPairs, sourcePath)
		if !owned {
			continue
		}

		content, readError := os.ReadFile(sourcePath)
		if readError != nil {
			return ArtifactError{SourcePath: sourcePath, Cause: readError}
		}
		sourceInfo, statError := os.Stat(sourcePath)
		if statError != nil {
			return ArtifactError{SourcePath: sourcePath, Cause: statError}
		}
		modificationTime := time.Now()
		if sourceInfo.ModTime().After(modificationTime) {
			modificationTime = sourceInfo.ModTime()
		}

		for _, artifactPath := range owner.pair.artifactPaths(owner.outputDirectory, relativePath) {
			if writeError := writeArtifact(artifactPath, content, modificationTime); writeError != nil {
				return ArtifactError{SourcePath: sourcePath, ArtifactPath: artifactPath, Cause: writeError}
			}
			recordedCount++
		}
	}

	recorder.logger.Debug(artifactsRecordedMessageConstant, zap.Int(logFieldArtifactCountConstant, recordedCount))
	return nil
}

type resolvedPair struct {
	pair            DirectoryPair
	sourceDirectory string
	outputDirectory string
}

func resolvePairs(pairs []DirectoryPair) ([]resolvedPair, error) {
	resolvedPairs := make([]resolvedPair, 0, len(pairs))
	for _, pair := range pairs {
		if len(strings.TrimSpace(pair.OutputDirectory)) == 0 {
			continue
		}
		sourceDirectory, sourceError := filepath.Abs(pair.SourceDirectory)
		if sourceError != nil {
			return nil, ArtifactError{SourcePath: pair.SourceDirectory, Cause: sourceError}
		}
		outputDirectory, outputError := filepath.Abs(pair.OutputDirectory)
		if outputError != nil {
			return nil, ArtifactError{SourcePath: pair.SourceDirectory, ArtifactPath: pair.OutputDirectory, Cause: outputError}
		}
		resolvedPairs = append(resolvedPairs, resolvedPair{pair: pair, sourceDirectory: sourceDirectory, outputDirectory: outputDirectory})
	}
	return resolvedPairs, nil
}

func ownerOf(resolvedPairs []resolvedPair, sourcePath string) (resolvedPair, string, bool) {
	var owner resolvedPair
	ownerRelativePath := ""
	owned := false
	for _, candidate := range resolvedPairs {
		relativePath, relativeError := filepath.Rel(candidate.sourceDirectory, sourcePath)
		if relativeError != nil || relativePath == parentDirectoryReferenceConstant ||
			strings.HasPrefix(relativePath, parentDirectoryReferenceConstant+string(filepath.Separator)) {
			continue
		}
		if owned && len(candidate.sourceDirectory) <= len(owner.sourceDirectory) {
			continue
		}
		owner = candidate
		ownerRelativePath = relativePath
		owned = true
	}
	return owner, ownerRelativePath, owned
}

func writeArtifact(artifactPath string, content []byte, modificationTime time.Time) error {
	if mkdirError := os.MkdirAll(filepath.Dir(artifactPath), artifactDirectoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}
	if writeError := os.WriteFile(artifactPath, content, artifactFilePermissionsConstant); writeError != nil {
		return writeError
	}
	return os.Chtimes(artifactPath, modificationTime, modificationTime)
}
