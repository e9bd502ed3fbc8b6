package formatstep

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/fmtstep/internal/arguments"
	"github.com/temirov/fmtstep/internal/changes"
	"github.com/temirov/fmtstep/internal/selection"
	pathutils "github.com/temirov/fmtstep/internal/utils/path"
)

var formatConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

const (
	defaultSourceDirectoryConstant    = "."
	defaultOutputDirectoryConstant    = ".fmtstep/out"
	defaultSourceSuffixConstant       = ".go"
	defaultWatchDebounceConstant      = 200 * time.Millisecond
	configurationKeySeparatorConstant = "."
	packagingKeyConstant              = "packaging"
	skipKeyConstant                   = "skip"
	includeStaleKeyConstant           = "include_stale"
	filterModifiedKeyConstant         = "filter_modified"
	styleKeyConstant                  = "style"
	rootsKeyConstant                  = "roots"
	sourceDirectoryKeyConstant        = "source_directory"
	outputDirectoryKeyConstant        = "output_directory"
	testSourceDirectoryKeyConstant    = "test_source_directory"
	testOutputDirectoryKeyConstant    = "test_output_directory"
	sourceSuffixKeyConstant           = "source_suffix"
	targetSuffixesKeyConstant         = "target_suffixes"
	stalenessToleranceKeyConstant     = "staleness_tolerance"
	vcsConnectionKeyConstant          = "vcs.connection"
	vcsDeveloperConnectionKeyConstant = "vcs.developer_connection"
	vcsBackendKeyConstant             = "vcs.backend"
	watchDebounceKeyConstant          = "watch.debounce"
)

// Configuration captures the format step settings stored under tools.format.
type Configuration struct {
	Packaging           string             `mapstructure:"packaging" yaml:"packaging"`
	Skip                bool               `mapstructure:"skip" yaml:"skip"`
	IncludeStale        bool               `mapstructure:"include_stale" yaml:"include_stale"`
	FilterModified      bool               `mapstructure:"filter_modified" yaml:"filter_modified"`
	Style               string             `mapstructure:"style" yaml:"style"`
	Roots               []string           `mapstructure:"roots" yaml:"roots"`
	SourceDirectory     string             `mapstructure:"source_directory" yaml:"source_directory"`
	OutputDirectory     string             `mapstructure:"output_directory" yaml:"output_directory"`
	TestSourceDirectory string             `mapstructure:"test_source_directory" yaml:"test_source_directory"`
	TestOutputDirectory string             `mapstructure:"test_output_directory" yaml:"test_output_directory"`
	SourceSuffix        string             `mapstructure:"source_suffix" yaml:"source_suffix"`
	TargetSuffixes      []string           `mapstructure:"target_suffixes" yaml:"target_suffixes"`
	StalenessTolerance  time.Duration      `mapstructure:"staleness_tolerance" yaml:"staleness_tolerance"`
	VCS                 VCSConfiguration   `mapstructure:"vcs" yaml:"vcs"`
	Watch               WatchConfiguration `mapstructure:"watch" yaml:"watch"`
}

// VCSConfiguration selects the connection strings and status backend used by the modified-file filter.
type VCSConfiguration struct {
	Connection          string `mapstructure:"connection" yaml:"connection"`
	DeveloperConnection string `mapstructure:"developer_connection" yaml:"developer_connection"`
	Backend             string `mapstructure:"backend" yaml:"backend"`
}

// WatchConfiguration stores watch mode settings.
type WatchConfiguration struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// DefaultConfiguration supplies baseline values for the format step.
func DefaultConfiguration() Configuration {
	return Configuration{
		Packaging:          string(PackagingModule),
		Style:              string(arguments.StyleDefault),
		SourceDirectory:    defaultSourceDirectoryConstant,
		OutputDirectory:    defaultOutputDirectoryConstant,
		SourceSuffix:       defaultSourceSuffixConstant,
		TargetSuffixes:     []string{defaultSourceSuffixConstant},
		StalenessTolerance: selection.DefaultStalenessTolerance,
		VCS:                VCSConfiguration{Backend: changes.BackendNative},
		Watch:              WatchConfiguration{Debounce: defaultWatchDebounceConstant},
	}
}

// DefaultConfigurationValues flattens DefaultConfiguration into viper default keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	keyPrefix := ""
	if trimmedPrefix := strings.TrimSpace(prefix); len(trimmedPrefix) > 0 {
		keyPrefix = trimmedPrefix + configurationKeySeparatorConstant
	}
	return map[string]any{
		keyPrefix + packagingKeyConstant:              defaults.Packaging,
		keyPrefix + skipKeyConstant:                   defaults.Skip,
		keyPrefix + includeStaleKeyConstant:           defaults.IncludeStale,
		keyPrefix + filterModifiedKeyConstant:         defaults.FilterModified,
		keyPrefix + styleKeyConstant:                  defaults.Style,
		keyPrefix + rootsKeyConstant:                  []string{},
		keyPrefix + sourceDirectoryKeyConstant:        defaults.SourceDirectory,
		keyPrefix + outputDirectoryKeyConstant:        defaults.OutputDirectory,
		keyPrefix + testSourceDirectoryKeyConstant:    defaults.TestSourceDirectory,
		keyPrefix + testOutputDirectoryKeyConstant:    defaults.TestOutputDirectory,
		keyPrefix + sourceSuffixKeyConstant:           defaults.SourceSuffix,
		keyPrefix + targetSuffixesKeyConstant:         defaults.TargetSuffixes,
		keyPrefix + stalenessToleranceKeyConstant:     defaults.StalenessTolerance.String(),
		keyPrefix + vcsConnectionKeyConstant:          defaults.VCS.Connection,
		keyPrefix + vcsDeveloperConnectionKeyConstant: defaults.VCS.DeveloperConnection,
		keyPrefix + vcsBackendKeyConstant:             defaults.VCS.Backend,
		keyPrefix + watchDebounceKeyConstant:          defaults.Watch.Debounce.String(),
	}
}

// Sanitize trims values, lower-cases enumerations, expands home directory shortcuts and restores defaults for unusable values.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Packaging = strings.ToLower(strings.TrimSpace(configuration.Packaging))
	if len(sanitized.Packaging) == 0 {
		sanitized.Packaging = defaults.Packaging
	}
	sanitized.Style = strings.ToLower(strings.TrimSpace(configuration.Style))
	if len(sanitized.Style) == 0 {
		sanitized.Style = defaults.Style
	}

	sanitized.Roots = sanitizePaths(configuration.Roots)
	sanitized.SourceDirectory = sanitizePath(configuration.SourceDirectory)
	if len(sanitized.SourceDirectory) == 0 {
		sanitized.SourceDirectory = defaults.SourceDirectory
	}
	sanitized.OutputDirectory = sanitizePath(configuration.OutputDirectory)
	sanitized.TestSourceDirectory = sanitizePath(configuration.TestSourceDirectory)
	sanitized.TestOutputDirectory = sanitizePath(configuration.TestOutputDirectory)

	sanitized.SourceSuffix = strings.TrimSpace(configuration.SourceSuffix)
	if len(sanitized.SourceSuffix) == 0 {
		sanitized.SourceSuffix = defaults.SourceSuffix
	}
	sanitized.TargetSuffixes = sanitizeSuffixes(configuration.TargetSuffixes)
	if len(sanitized.TargetSuffixes) == 0 {
		sanitized.TargetSuffixes = []string{sanitized.SourceSuffix}
	}
	if sanitized.StalenessTolerance < 0 {
		sanitized.StalenessTolerance = defaults.StalenessTolerance
	}

	sanitized.VCS.Connection = strings.TrimSpace(configuration.VCS.Connection)
	sanitized.VCS.DeveloperConnection = strings.TrimSpace(configuration.VCS.DeveloperConnection)
	sanitized.VCS.Backend = strings.ToLower(strings.TrimSpace(configuration.VCS.Backend))
	if len(sanitized.VCS.Backend) == 0 {
		sanitized.VCS.Backend = defaults.VCS.Backend
	}
	if sanitized.Watch.Debounce <= 0 {
		sanitized.Watch.Debounce = defaults.Watch.Debounce
	}

	return sanitized
}

// ConnectionSettings returns the connection strings consumed by the modified-file filter.
func (configuration VCSConfiguration) ConnectionSettings() changes.ConnectionSettings {
	return changes.ConnectionSettings{
		Connection:          configuration.Connection,
		DeveloperConnection: configuration.DeveloperConnection,
	}
}

// DirectoryPairs resolves the main and test directory pairs against projectRoot.
// The test pair is omitted when no test source directory is configured.
func (configuration Configuration) DirectoryPairs(projectRoot string) []selection.DirectoryPair {
	pairs := []selection.DirectoryPair{
		configuration.directoryPair(projectRoot, configuration.SourceDirectory, configuration.OutputDirectory),
	}
	if len(configuration.TestSourceDirectory) > 0 {
		pairs = append(pairs, configuration.directoryPair(projectRoot, configuration.TestSourceDirectory, configuration.TestOutputDirectory))
	}
	return pairs
}

func (configuration Configuration) directoryPair(projectRoot string, sourceDirectory string, outputDirectory string) selection.DirectoryPair {
	return selection.DirectoryPair{
		SourceDirectory: resolveAgainstRoot(projectRoot, sourceDirectory),
		OutputDirectory: resolveAgainstRoot(projectRoot, outputDirectory),
		SourceSuffix:    configuration.SourceSuffix,
		TargetSuffixes:  append([]string{}, configuration.TargetSuffixes...),
	}
}

func resolveAgainstRoot(projectRoot string, directory string) string {
	if len(directory) == 0 {
		return ""
	}
	if filepath.IsAbs(directory) {
		return filepath.Clean(directory)
	}
	return filepath.Join(projectRoot, directory)
}

func sanitizePath(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	return formatConfigurationHomeDirectoryExpander.Expand(trimmedPath)
}

func sanitizePaths(candidatePaths []string) []string {
	return formatConfigurationHomeDirectoryExpander.ExpandAll(candidatePaths)
}

func sanitizeSuffixes(candidateSuffixes []string) []string {
	sanitizedSuffixes := make([]string, 0, len(candidateSuffixes))
	seenSuffixes := make(map[string]struct{}, len(candidateSuffixes))
	for _, candidateSuffix := range candidateSuffixes {
		trimmedSuffix := strings.TrimSpace(candidateSuffix)
		if len(trimmedSuffix) == 0 {
			continue
		}
		if _, seen := seenSuffixes[trimmedSuffix]; seen {
			continue
		}
		seenSuffixes[trimmedSuffix] = struct{}{}
		sanitizedSuffixes = append(sanitizedSuffixes, trimmedSuffix)
	}
	return sanitizedSuffixes
}
