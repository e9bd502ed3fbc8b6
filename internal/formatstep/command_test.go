package formatstep_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/fmtstep/internal/arguments"
	"github.com/temirov/fmtstep/internal/formatstep"
	"github.com/temirov/fmtstep/internal/invocation"
)

const (
	testPackagingFlagConstant      = "--packaging"
	testSkipFlagConstant           = "--skip"
	testStyleFlagConstant          = "--style"
	testVCSBackendFlagConstant     = "--vcs-backend"
	testFilterModifiedFlagConstant = "--filter-modified"
	testAggregatorValueConstant    = "aggregator"
	testAlternateValueConstant     = "alternate"
	testUnknownStyleConstant       = "fancy"
	testUnknownBackendConstant     = "mercurial"
	testInvalidStyleFragment       = "invalid style"
	testFormatStepFailedFragment   = "format step failed"
)

type concurrentEntryPoint struct {
	mutex       sync.Mutex
	invocations [][]string
	onInvoke    func()
}

func (entryPoint *concurrentEntryPoint) run(invocationArguments []string, exit invocation.ExitFunction) error {
	entryPoint.mutex.Lock()
	entryPoint.invocations = append(entryPoint.invocations, append([]string{}, invocationArguments...))
	onInvoke := entryPoint.onInvoke
	entryPoint.mutex.Unlock()
	if onInvoke != nil {
		onInvoke()
	}
	exit(0)
	return nil
}

func (entryPoint *concurrentEntryPoint) sortedInvocations() [][]string {
	entryPoint.mutex.Lock()
	defer entryPoint.mutex.Unlock()
	invocations := append([][]string{}, entryPoint.invocations...)
	sort.Slice(invocations, func(left int, right int) bool {
		return invocations[left][len(invocations[left])-1] < invocations[right][len(invocations[right])-1]
	})
	return invocations
}

type commandHarness struct {
	builder    formatstep.CommandBuilder
	entryPoint *concurrentEntryPoint
	guard      *invocation.Guard
	exits      *exitRecorder
}

func newCommandHarness(workingDirectory string) commandHarness {
	exits := &exitRecorder{}
	harness := commandHarness{
		entryPoint: &concurrentEntryPoint{},
		guard:      invocation.NewGuard(exits.exit, nil),
		exits:      exits,
	}
	harness.builder = formatstep.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.NewNop()
		},
		ConfigurationProvider: func() formatstep.Configuration {
			configuration := formatstep.DefaultConfiguration()
			configuration.SourceDirectory = testMainSourceDirectoryConstant
			configuration.OutputDirectory = testMainOutputDirectoryConstant
			configuration.TestSourceDirectory = testTestSourceDirectoryConstant
			configuration.TestOutputDirectory = testTestOutputDirectoryConstant
			return configuration
		},
		Guard:            harness.guard,
		EntryPoint:       harness.entryPoint.run,
		WorkingDirectory: workingDirectory,
	}
	return harness
}

func TestFormatCommandRunsEveryProjectRoot(testInstance *testing.T) {
	firstProject := newProjectFixture(testInstance, testFormattedContentConstant)
	secondProject := newProjectFixture(testInstance, testFormattedContentConstant)
	harness := newCommandHarness("")

	command, buildError := harness.builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{firstProject.root, secondProject.root, testStyleFlagConstant, testAlternateValueConstant})
	require.NoError(testInstance, command.ExecuteContext(context.Background()))

	expectedInvocations := [][]string{
		{arguments.ReplaceFlag, arguments.AlternateStyleFlag, firstProject.stalePath, firstProject.testPath},
		{arguments.ReplaceFlag, arguments.AlternateStyleFlag, secondProject.stalePath, secondProject.testPath},
	}
	sort.Slice(expectedInvocations, func(left int, right int) bool {
		return expectedInvocations[left][len(expectedInvocations[left])-1] < expectedInvocations[right][len(expectedInvocations[right])-1]
	})
	require.Equal(testInstance, expectedInvocations, harness.entryPoint.sortedInvocations())
	require.Empty(testInstance, harness.exits.exitCodes)
	require.False(testInstance, harness.guard.TrapInstalled())
}

func TestFormatCommandDefaultsToWorkingDirectory(testInstance *testing.T) {
	project := newProjectFixture(testInstance, testFormattedContentConstant)
	harness := newCommandHarness(project.root)

	command, buildError := harness.builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	require.NoError(testInstance, command.ExecuteContext(context.Background()))

	require.Equal(testInstance, [][]string{{arguments.ReplaceFlag, project.stalePath, project.testPath}}, harness.entryPoint.sortedInvocations())
}

func TestFormatCommandFlagsGateExecution(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "aggregator_packaging", arguments: []string{testPackagingFlagConstant, testAggregatorValueConstant}},
		{name: "skip", arguments: []string{testSkipFlagConstant}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			project := newProjectFixture(subtest, testFormattedContentConstant)
			harness := newCommandHarness(project.root)

			command, buildError := harness.builder.Build()
			require.NoError(subtest, buildError)
			command.SetArgs(testCase.arguments)
			require.NoError(subtest, command.ExecuteContext(context.Background()))
			require.Empty(subtest, harness.entryPoint.sortedInvocations())
		})
	}
}

func TestFormatCommandRejectsInvalidSettings(testInstance *testing.T) {
	testCases := []struct {
		name             string
		arguments        []string
		expectedFragment string
	}{
		{
			name:             "unknown_style",
			arguments:        []string{testStyleFlagConstant, testUnknownStyleConstant},
			expectedFragment: testInvalidStyleFragment,
		},
		{
			name:             "unknown_backend",
			arguments:        []string{testFilterModifiedFlagConstant, testVCSBackendFlagConstant, testUnknownBackendConstant},
			expectedFragment: testUnknownBackendConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			project := newProjectFixture(subtest, testFormattedContentConstant)
			harness := newCommandHarness(project.root)

			command, buildError := harness.builder.Build()
			require.NoError(subtest, buildError)
			command.SilenceUsage = true
			command.SilenceErrors = true
			command.SetArgs(testCase.arguments)

			executionError := command.ExecuteContext(context.Background())
			require.Error(subtest, executionError)
			require.ErrorContains(subtest, executionError, testFormatStepFailedFragment)
			require.ErrorContains(subtest, executionError, testCase.expectedFragment)
			require.Empty(subtest, harness.entryPoint.sortedInvocations())
		})
	}
}

func TestWatchCommandRunsInitialPassAndStopsOnCancellation(testInstance *testing.T) {
	project := newProjectFixture(testInstance, testFormattedContentConstant)
	harness := newCommandHarness(project.root)
	executionContext, cancel := context.WithCancel(context.Background())
	defer cancel()
	harness.entryPoint.onInvoke = cancel

	command, buildError := harness.builder.BuildWatch()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	require.NoError(testInstance, command.ExecuteContext(executionContext))

	require.Equal(testInstance, [][]string{{arguments.ReplaceFlag, project.stalePath, project.testPath}}, harness.entryPoint.sortedInvocations())
}
