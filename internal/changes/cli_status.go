package changes

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/fmtstep/internal/execshell"
)

const (
	gitRevParseArgumentConstant          = "rev-parse"
	gitShowTopLevelArgumentConstant      = "--show-toplevel"
	gitStatusArgumentConstant            = "status"
	gitPorcelainArgumentConstant         = "--porcelain"
	gitNullTerminatedArgumentConstant    = "-z"
	gitUntrackedFilesAllArgumentConstant = "--untracked-files=all"
	porcelainStatusPrefixLengthConstant  = 3
	porcelainRenamedStatusCodeConstant   = 'R'
	porcelainCopiedStatusCodeConstant    = 'C'
	porcelainRecordSeparatorConstant     = "\x00"
	missingExecutorMessageConstant       = "git executor not configured"
	emptyTopLevelMessageConstant         = "git reported an empty repository root"
	gitOptionalLocksVariableConstant     = "GIT_OPTIONAL_LOCKS"
	gitOptionalLocksDisabledConstant     = "0"
)

var (
	errMissingGitExecutor = errors.New(missingExecutorMessageConstant)
	errEmptyTopLevel      = errors.New(emptyTopLevelMessageConstant)
)

// CommandLineStatusProvider reads working copy status by running the git binary.
type CommandLineStatusProvider struct {
	executor GitExecutor
}

// NewCommandLineStatusProvider constructs a provider backed by the supplied executor.
func NewCommandLineStatusProvider(executor GitExecutor) CommandLineStatusProvider {
	return CommandLineStatusProvider{executor: executor}
}

// Status runs git status in porcelain mode and reports the changed paths under baseDirectory.
func (provider CommandLineStatusProvider) Status(executionContext context.Context, connection Connection, baseDirectory string) ([]string, error) {
	if provider.executor == nil {
		return nil, errMissingGitExecutor
	}

	canonicalBase, canonicalError := canonicalDirectory(baseDirectory)
	if canonicalError != nil {
		return nil, canonicalError
	}

	topLevelResult, topLevelError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseArgumentConstant, gitShowTopLevelArgumentConstant},
		WorkingDirectory: canonicalBase,
	})
	if topLevelError != nil {
		return nil, topLevelError
	}
	topLevel := strings.TrimSpace(topLevelResult.StandardOutput)
	if len(topLevel) == 0 {
		return nil, errEmptyTopLevel
	}
	repositoryRoot, rootError := canonicalDirectory(topLevel)
	if rootError != nil {
		return nil, rootError
	}

	statusResult, statusError := provider.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitStatusArgumentConstant, gitPorcelainArgumentConstant, gitNullTerminatedArgumentConstant, gitUntrackedFilesAllArgumentConstant},
		WorkingDirectory:     canonicalBase,
		EnvironmentVariables: map[string]string{gitOptionalLocksVariableConstant: gitOptionalLocksDisabledConstant},
	})
	if statusError != nil {
		return nil, statusError
	}

	return relativeToBase(repositoryRoot, canonicalBase, parsePorcelainStatus(statusResult.StandardOutput)), nil
}

// parsePorcelainStatus extracts paths from NUL separated porcelain v1 output.
// Rename and copy records are followed by their source path, which is skipped.
func parsePorcelainStatus(output string) []string {
	records := strings.Split(output, porcelainRecordSeparatorConstant)
	paths := make([]string, 0, len(records))
	for recordIndex := 0; recordIndex < len(records); recordIndex++ {
		record := records[recordIndex]
		if len(record) <= porcelainStatusPrefixLengthConstant {
			continue
		}
		paths = append(paths, record[porcelainStatusPrefixLengthConstant:])
		statusCode := record[0]
		if statusCode == porcelainRenamedStatusCodeConstant || statusCode == porcelainCopiedStatusCodeConstant {
			recordIndex++
		}
	}
	return paths
}
