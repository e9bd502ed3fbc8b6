package changes

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/fmtstep/internal/selection"
)

const (
	filterAppliedMessageConstant      = "narrowed files to reformat to modified files"
	projectRootFieldNameConstant      = "project_root"
	connectionFieldNameConstant       = "connection"
	candidateCountFieldNameConstant   = "candidate_count"
	changedCountFieldNameConstant     = "changed_count"
	selectedCountFieldNameConstant    = "selected_count"
	statusQueryStartedMessageConstant = "querying vcs status"
)

// Filter narrows candidate sets to the files reported as changed by a StatusProvider.
type Filter struct {
	provider StatusProvider
	logger   *zap.Logger
}

// NewFilter constructs a Filter. A nil provider selects the go-git backend.
func NewFilter(provider StatusProvider, logger *zap.Logger) *Filter {
	if provider == nil {
		provider = NewGitStatusProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{provider: provider, logger: logger}
}

// Apply intersects candidates with the changed files under projectRoot.
func (filter *Filter) Apply(executionContext context.Context, candidates selection.CandidateFileSet, settings ConnectionSettings, projectRoot string) (selection.CandidateFileSet, error) {
	connection, connectionError := ResolveConnection(settings)
	if connectionError != nil {
		return nil, connectionError
	}

	absoluteRoot, absoluteError := filepath.Abs(projectRoot)
	if absoluteError != nil {
		return nil, QueryError{BaseDirectory: projectRoot, Cause: absoluteError}
	}
	absoluteRoot = filepath.Clean(absoluteRoot)

	filter.logger.Debug(statusQueryStartedMessageConstant,
		zap.String(projectRootFieldNameConstant, absoluteRoot),
		zap.String(connectionFieldNameConstant, connection.Raw),
	)

	changedPaths, statusError := filter.provider.Status(executionContext, connection, absoluteRoot)
	if statusError != nil {
		var queryError QueryError
		if errors.As(statusError, &queryError) {
			return nil, statusError
		}
		return nil, QueryError{BaseDirectory: absoluteRoot, Cause: statusError}
	}

	changedFiles := selection.NewCandidateFileSet()
	for _, changedPath := range changedPaths {
		changedFiles.Add(filepath.Join(absoluteRoot, changedPath))
	}

	selectedFiles := candidates.Intersection(changedFiles)
	filter.logger.Info(filterAppliedMessageConstant,
		zap.String(projectRootFieldNameConstant, absoluteRoot),
		zap.Int(candidateCountFieldNameConstant, candidates.Len()),
		zap.Int(changedCountFieldNameConstant, changedFiles.Len()),
		zap.Int(selectedCountFieldNameConstant, selectedFiles.Len()),
	)
	return selectedFiles, nil
}
