package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes command through os/exec. A command that starts and exits non-zero is reported through
// ExecutionResult.ExitCode with a nil error; only start and wait failures are returned as errors.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	executionResult := ExecutionResult{}
	runError := executable.Run()
	executionResult.StandardOutput = standardOutputBuffer.String()
	executionResult.StandardError = standardErrorBuffer.String()
	if runError == nil {
		return executionResult, nil
	}

	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	executionResult.ExitCode = exitError.ExitCode()
	return executionResult, nil
}

// mergeEnvironment returns nil, meaning the inherited environment, when there are no overrides.
func mergeEnvironment(inherited []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	merged := make([]string, 0, len(inherited)+len(overrides))
	for _, assignment := range inherited {
		variableName, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[variableName]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}

	overrideNames := make([]string, 0, len(overrides))
	for variableName := range overrides {
		overrideNames = append(overrideNames, variableName)
	}
	sort.Strings(overrideNames)
	for _, variableName := range overrideNames {
		merged = append(merged, variableName+environmentAssignmentSeparatorConstant+overrides[variableName])
	}
	return merged
}
