package formatter_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fmtstep/internal/formatter"
)

const (
	testUnformattedSourceConstant  = "package sample\nfunc Value( ) int { return 1 }\n"
	testFormattedSourceConstant    = "package sample\n\nfunc Value() int { return 1 }\n"
	testUnusedImportSourceConstant = "package sample\n\nimport (\n\t\"fmt\"\n\t\"os\"\n\t\"strings\"\n)\n\nfunc Print() { fmt.Println(strings.TrimSpace(\"\")) }\n"
	testPrunedImportSourceConstant = "package sample\n\nimport (\n\t\"fmt\"\n\t\"strings\"\n)\n\nfunc Print() { fmt.Println(strings.TrimSpace(\"\")) }\n"
	testInvalidSourceConstant      = "package sample\nfunc {\n"
	testSampleFileNameConstant     = "sample.go"
	testSecondFileNameConstant     = "second.go"
	testMissingFileNameConstant    = "missing.go"
	testReplaceFlagConstant        = "--replace"
	testImportsFlagConstant        = "--imports"
	testUnknownFlagConstant        = "--unknown"
	testNoFilesMessageConstant     = "no files to format"
	testExitNotCalledCodeConstant  = -1
)

type exitRecorder struct {
	exitCode int
	calls    int
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{exitCode: testExitNotCalledCodeConstant}
}

func (recorder *exitRecorder) exit(exitCode int) {
	recorder.exitCode = exitCode
	recorder.calls++
}

func writeSourceFile(testInstance *testing.T, directory string, name string, content string) string {
	testInstance.Helper()
	path := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProgramMainFormatsFiles(testInstance *testing.T) {
	testCases := []struct {
		name             string
		source           string
		flags            []string
		expectedContent  string
		expectedOutput   string
		expectedExitCode int
	}{
		{
			name:             "replace_in_place",
			source:           testUnformattedSourceConstant,
			flags:            []string{testReplaceFlagConstant},
			expectedContent:  testFormattedSourceConstant,
			expectedExitCode: formatter.ExitCodeSuccess,
		},
		{
			name:             "print_without_replace",
			source:           testUnformattedSourceConstant,
			expectedContent:  testUnformattedSourceConstant,
			expectedOutput:   testFormattedSourceConstant,
			expectedExitCode: formatter.ExitCodeSuccess,
		},
		{
			name:             "imports_style_prunes_unused_imports",
			source:           testUnusedImportSourceConstant,
			flags:            []string{testReplaceFlagConstant, testImportsFlagConstant},
			expectedContent:  testPrunedImportSourceConstant,
			expectedExitCode: formatter.ExitCodeSuccess,
		},
		{
			name:             "default_style_keeps_unused_imports",
			source:           testUnusedImportSourceConstant,
			flags:            []string{testReplaceFlagConstant},
			expectedContent:  testUnusedImportSourceConstant,
			expectedExitCode: formatter.ExitCodeSuccess,
		},
		{
			name:             "syntax_error_fails",
			source:           testInvalidSourceConstant,
			flags:            []string{testReplaceFlagConstant},
			expectedContent:  testInvalidSourceConstant,
			expectedExitCode: formatter.ExitCodeFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			sourcePath := writeSourceFile(subtest, subtest.TempDir(), testSampleFileNameConstant, testCase.source)
			var output bytes.Buffer
			var errorOutput bytes.Buffer
			recorder := newExitRecorder()

			program := formatter.Program{Output: &output, ErrorOutput: &errorOutput}
			program.Main(append(append([]string{}, testCase.flags...), sourcePath), recorder.exit)

			require.Equal(subtest, 1, recorder.calls)
			require.Equal(subtest, testCase.expectedExitCode, recorder.exitCode)
			require.Equal(subtest, testCase.expectedOutput, output.String())

			content, readError := os.ReadFile(sourcePath)
			require.NoError(subtest, readError)
			require.Equal(subtest, testCase.expectedContent, string(content))
		})
	}
}

func TestProgramMainContinuesPastFailures(testInstance *testing.T) {
	directory := testInstance.TempDir()
	formattablePath := writeSourceFile(testInstance, directory, testSecondFileNameConstant, testUnformattedSourceConstant)
	missingPath := filepath.Join(directory, testMissingFileNameConstant)
	var errorOutput bytes.Buffer
	recorder := newExitRecorder()

	formatter.Program{ErrorOutput: &errorOutput}.Main([]string{testReplaceFlagConstant, missingPath, formattablePath}, recorder.exit)

	require.Equal(testInstance, formatter.ExitCodeFailure, recorder.exitCode)
	require.Contains(testInstance, errorOutput.String(), missingPath)

	content, readError := os.ReadFile(formattablePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testFormattedSourceConstant, string(content))
}

func TestProgramMainRejectsInvalidUsage(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{
			name:          "unknown_flag",
			arguments:     []string{testUnknownFlagConstant},
			expectedError: testUnknownFlagConstant,
		},
		{
			name:          "no_files",
			arguments:     []string{testReplaceFlagConstant},
			expectedError: testNoFilesMessageConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			var errorOutput bytes.Buffer
			recorder := newExitRecorder()

			formatter.Program{ErrorOutput: &errorOutput}.Main(testCase.arguments, recorder.exit)

			require.Equal(subtest, 1, recorder.calls)
			require.Equal(subtest, formatter.ExitCodeFailure, recorder.exitCode)
			require.Contains(subtest, errorOutput.String(), testCase.expectedError)
		})
	}
}
