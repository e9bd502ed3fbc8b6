package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForStatusIncludesWorkingDirectory(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"status", "--porcelain", "-z"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(testInstance, "Reviewing working tree status in /workspace/repo", message)
}

func TestBuildCompletedMessageForTopLevelReportsRoot(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"rev-parse", "--show-toplevel"},
			WorkingDirectory: "/workspace/repo/module",
		},
	}

	message := formatter.BuildCompletedMessage(command, ExecutionResult{StandardOutput: "/workspace/repo\n"})

	require.Equal(testInstance, "Repository root for /workspace/repo/module is /workspace/repo", message)
}

func TestBuildFailureMessagesFallBackToGenericLabel(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"--version"}},
	}

	require.Equal(testInstance, "git --version failed with exit code 2: boom", formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 2, StandardError: "boom\n"}))
	require.Equal(testInstance, "git --version failed: missing binary", formatter.BuildExecutionFailureMessage(command, errors.New("missing binary")))
}
