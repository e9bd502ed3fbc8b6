package changes_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/fmtstep/internal/changes"
	"github.com/temirov/fmtstep/internal/selection"
)

const (
	testFilterConnectionConstant     = "scm:git:https://example.com/project.git"
	testChangedFileNameConstant      = "changed.go"
	testUnchangedFileNameConstant    = "unchanged.go"
	testNestedChangedPathConstant    = "nested/inner.go"
	testUnrelatedChangedPathConstant = "docs/readme.md"
	testFilterAppliedMessageConstant = "narrowed files to reformat to modified files"
	testStatusFailureMessageConstant = "status unavailable"
)

type stubStatusProvider struct {
	changedPaths  []string
	statusError   error
	calls         int
	baseDirectory string
	connection    changes.Connection
}

func (provider *stubStatusProvider) Status(executionContext context.Context, connection changes.Connection, baseDirectory string) ([]string, error) {
	provider.calls++
	provider.baseDirectory = baseDirectory
	provider.connection = connection
	return provider.changedPaths, provider.statusError
}

func TestFilterApplyIntersectsChangedFiles(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	changedFile := filepath.Join(projectRoot, testChangedFileNameConstant)
	nestedFile := filepath.Join(projectRoot, filepath.FromSlash(testNestedChangedPathConstant))
	unchangedFile := filepath.Join(projectRoot, testUnchangedFileNameConstant)
	candidates := selection.NewCandidateFileSet(changedFile, nestedFile, unchangedFile)

	provider := &stubStatusProvider{changedPaths: []string{
		testChangedFileNameConstant,
		filepath.FromSlash(testNestedChangedPathConstant),
		filepath.FromSlash(testUnrelatedChangedPathConstant),
	}}
	observedCore, observedLogs := observer.New(zap.InfoLevel)
	filter := changes.NewFilter(provider, zap.New(observedCore))

	selected, applyError := filter.Apply(context.Background(), candidates, changes.ConnectionSettings{DeveloperConnection: testFilterConnectionConstant}, projectRoot)
	require.NoError(testInstance, applyError)
	require.Equal(testInstance, []string{changedFile, nestedFile}, selected.Sorted())
	require.Equal(testInstance, 1, provider.calls)
	require.Equal(testInstance, projectRoot, provider.baseDirectory)
	require.Equal(testInstance, changes.ProviderGit, provider.connection.Provider)
	require.Equal(testInstance, 1, observedLogs.FilterMessage(testFilterAppliedMessageConstant).Len())
}

func TestFilterApplyWithNoChangesReturnsEmptySet(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	candidates := selection.NewCandidateFileSet(filepath.Join(projectRoot, testChangedFileNameConstant))
	filter := changes.NewFilter(&stubStatusProvider{}, nil)

	selected, applyError := filter.Apply(context.Background(), candidates, changes.ConnectionSettings{Connection: testFilterConnectionConstant}, projectRoot)
	require.NoError(testInstance, applyError)
	require.Zero(testInstance, selected.Len())
}

func TestFilterApplyWrapsProviderFailures(testInstance *testing.T) {
	projectRoot := testInstance.TempDir()
	statusFailure := errors.New(testStatusFailureMessageConstant)
	filter := changes.NewFilter(&stubStatusProvider{statusError: statusFailure}, zap.NewNop())

	_, applyError := filter.Apply(context.Background(), selection.NewCandidateFileSet(), changes.ConnectionSettings{Connection: testFilterConnectionConstant}, projectRoot)
	require.Error(testInstance, applyError)
	require.ErrorIs(testInstance, applyError, statusFailure)

	var queryError changes.QueryError
	require.True(testInstance, errors.As(applyError, &queryError))
	require.Equal(testInstance, projectRoot, queryError.BaseDirectory)
}

func TestFilterApplyRequiresConnection(testInstance *testing.T) {
	provider := &stubStatusProvider{}
	filter := changes.NewFilter(provider, zap.NewNop())

	_, applyError := filter.Apply(context.Background(), selection.NewCandidateFileSet(), changes.ConnectionSettings{}, testInstance.TempDir())
	require.Error(testInstance, applyError)
	require.IsType(testInstance, changes.ConfigurationError{}, applyError)
	require.Zero(testInstance, provider.calls)
}
