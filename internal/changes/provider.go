package changes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/fmtstep/internal/execshell"
)

// Status backends accepted by ResolveStatusProvider.
const (
	BackendNative = "native"
	BackendCLI    = "cli"
)

const (
	unsupportedBackendTemplateConstant = "unsupported vcs backend %q (expected %s or %s)"
	parentDirectoryPrefixConstant      = ".."
)

// StatusProvider reports the paths a working copy considers changed.
// Returned paths are relative to baseDirectory and use OS-native separators.
type StatusProvider interface {
	Status(executionContext context.Context, connection Connection, baseDirectory string) ([]string, error)
}

// GitExecutor runs git commands for the command line backend.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ResolveStatusProvider selects a backend by name. A blank name selects the native backend.
func ResolveStatusProvider(backend string, executor GitExecutor) (StatusProvider, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNative:
		return NewGitStatusProvider(), nil
	case BackendCLI:
		return NewCommandLineStatusProvider(executor), nil
	default:
		return nil, ConfigurationError{Message: fmt.Sprintf(unsupportedBackendTemplateConstant, backend, BackendNative, BackendCLI)}
	}
}

// relativeToBase converts slash separated repository paths into paths relative to baseDirectory,
// dropping paths that fall outside it.
func relativeToBase(repositoryRoot string, baseDirectory string, repositoryPaths []string) []string {
	relativePaths := make([]string, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		if len(repositoryPath) == 0 {
			continue
		}
		absolutePath := filepath.Join(repositoryRoot, filepath.FromSlash(repositoryPath))
		relativePath, relativeError := filepath.Rel(baseDirectory, absolutePath)
		if relativeError != nil {
			continue
		}
		if relativePath == parentDirectoryPrefixConstant || strings.HasPrefix(relativePath, parentDirectoryPrefixConstant+string(filepath.Separator)) {
			continue
		}
		relativePaths = append(relativePaths, relativePath)
	}
	return relativePaths
}

// canonicalDirectory returns an absolute path with symbolic links resolved when possible.
func canonicalDirectory(directory string) (string, error) {
	absoluteDirectory, absoluteError := filepath.Abs(directory)
	if absoluteError != nil {
		return "", absoluteError
	}
	resolvedDirectory, resolveError := filepath.EvalSymlinks(absoluteDirectory)
	if resolveError != nil {
		return absoluteDirectory, nil
	}
	return resolvedDirectory, nil
}
