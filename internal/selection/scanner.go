package selection

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultStalenessTolerance is the slack granted to artifacts written just before their source.
	DefaultStalenessTolerance = 1024 * time.Millisecond

	hiddenDirectoryPrefixConstant         = "."
	missingSourceDirectoryMessageConstant = "source directory does not exist, skipping file collection"
	filesFoundMessageConstant             = "found files to reformat"
	logFieldSourceDirectoryConstant       = "source_directory"
	logFieldOutputDirectoryConstant       = "output_directory"
	logFieldFileCountConstant             = "file_count"
	logFieldIncludeStaleConstant          = "include_stale"
)

// DirectoryPair describes one scan unit: a source tree and the directory holding its artifacts.
type DirectoryPair struct {
	SourceDirectory string
	OutputDirectory string
	SourceSuffix    string
	TargetSuffixes  []string
}

// Scanner selects files needing processing from directory pairs.
type Scanner struct {
	logger             *zap.Logger
	fileSystem         FileSystem
	stalenessTolerance time.Duration
}

// NewScanner constructs a Scanner. A nil logger discards output and a nil file system uses the operating system.
func NewScanner(logger *zap.Logger, fileSystem FileSystem, stalenessTolerance time.Duration) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if stalenessTolerance < 0 {
		stalenessTolerance = 0
	}
	return &Scanner{
		logger:             logger,
		fileSystem:         fileSystem,
		stalenessTolerance: stalenessTolerance,
	}
}

// ScanAll scans every pair and unions the results.
func (scanner *Scanner) ScanAll(pairs []DirectoryPair, includeStale bool) (CandidateFileSet, error) {
	candidates := NewCandidateFileSet()
	for _, pair := range pairs {
		pairCandidates, scanError := scanner.Scan(pair, includeStale)
		if scanError != nil {
			return nil, scanError
		}
		candidates = candidates.Union(pairCandidates)
	}
	return candidates, nil
}

// Scan returns the files under pair.SourceDirectory that need processing.
// When includeStale is true every file matching the source suffix is returned,
// otherwise only files whose artifacts are missing or out of date.
// Hidden directories and an output directory nested inside the source tree are not descended into.
func (scanner *Scanner) Scan(pair DirectoryPair, includeStale bool) (CandidateFileSet, error) {
	sourceDirectory, absoluteError := scanner.fileSystem.Abs(pair.SourceDirectory)
	if absoluteError != nil {
		return nil, ScanError{Directory: pair.SourceDirectory, Cause: absoluteError}
	}

	if _, statError := scanner.fileSystem.Stat(sourceDirectory); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			scanner.logger.Info(missingSourceDirectoryMessageConstant, zap.String(logFieldSourceDirectoryConstant, sourceDirectory))
			return NewCandidateFileSet(), nil
		}
		return nil, ScanError{Directory: sourceDirectory, Cause: statError}
	}

	outputDirectory := ""
	if len(strings.TrimSpace(pair.OutputDirectory)) > 0 {
		resolvedOutputDirectory, outputAbsoluteError := scanner.fileSystem.Abs(pair.OutputDirectory)
		if outputAbsoluteError != nil {
			return nil, ScanError{Directory: pair.OutputDirectory, Cause: outputAbsoluteError}
		}
		outputDirectory = resolvedOutputDirectory
	}

	candidates := NewCandidateFileSet()
	walkError := scanner.fileSystem.WalkDir(sourceDirectory, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if directoryEntry.IsDir() {
			if path != sourceDirectory && (path == outputDirectory || strings.HasPrefix(directoryEntry.Name(), hiddenDirectoryPrefixConstant)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(directoryEntry.Name(), pair.SourceSuffix) {
			return nil
		}
		if includeStale || len(outputDirectory) == 0 {
			candidates.Add(path)
			return nil
		}

		stale, staleError := scanner.isStale(pair, sourceDirectory, outputDirectory, path, directoryEntry)
		if staleError != nil {
			return staleError
		}
		if stale {
			candidates.Add(path)
		}
		return nil
	})
	if walkError != nil {
		return nil, ScanError{Directory: sourceDirectory, Cause: walkError}
	}

	scanner.logger.Info(
		filesFoundMessageConstant,
		zap.String(logFieldSourceDirectoryConstant, sourceDirectory),
		zap.String(logFieldOutputDirectoryConstant, outputDirectory),
		zap.Bool(logFieldIncludeStaleConstant, includeStale),
		zap.Int(logFieldFileCountConstant, candidates.Len()),
	)

	return candidates, nil
}

// isStale reports whether any artifact mapped from sourcePath is missing or older than the source.
func (scanner *Scanner) isStale(pair DirectoryPair, sourceDirectory string, outputDirectory string, sourcePath string, directoryEntry fs.DirEntry) (bool, error) {
	sourceInfo, infoError := directoryEntry.Info()
	if infoError != nil {
		return false, infoError
	}

	relativePath, relativeError := filepath.Rel(sourceDirectory, sourcePath)
	if relativeError != nil {
		return false, relativeError
	}

	for _, artifactPath := range pair.artifactPaths(outputDirectory, relativePath) {
		artifactInfo, artifactError := scanner.fileSystem.Stat(artifactPath)
		if artifactError != nil {
			if errors.Is(artifactError, fs.ErrNotExist) {
				return true, nil
			}
			return false, artifactError
		}
		if artifactInfo.ModTime().Add(scanner.stalenessTolerance).Before(sourceInfo.ModTime()) {
			return true, nil
		}
	}

	return false, nil
}

// artifactPaths maps a source path relative to the source directory onto the artifacts expected under outputDirectory.
func (pair DirectoryPair) artifactPaths(outputDirectory string, relativePath string) []string {
	artifactStem := strings.TrimSuffix(relativePath, pair.SourceSuffix)

	targetSuffixes := pair.TargetSuffixes
	if len(targetSuffixes) == 0 {
		targetSuffixes = []string{pair.SourceSuffix}
	}

	artifactPaths := make([]string, 0, len(targetSuffixes))
	for _, targetSuffix := range targetSuffixes {
		artifactPaths = append(artifactPaths, filepath.Join(outputDirectory, artifactStem+targetSuffix))
	}
	return artifactPaths
}
