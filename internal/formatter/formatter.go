// Package formatter provides the batch formatting entry point that the format step invokes in process.
package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/tools/imports"
)

const (
	programNameConstant          = "fmtstep-formatter"
	replaceFlagNameConstant      = "replace"
	replaceFlagShorthandConstant = "w"
	replaceFlagUsageConstant     = "write the formatted result back to each file"
	importsFlagNameConstant      = "imports"
	importsFlagUsageConstant     = "also add missing and remove unused imports"
	noFilesMessageConstant       = "no files to format"
	diagnosticTemplateConstant   = "%s: %v\n"
	importsTabWidthConstant      = 8
)

// Exit codes passed to the exit function.
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 2
)

var errNoFiles = errors.New(noFilesMessageConstant)

// Program formats Go source files named on its command line.
type Program struct {
	Output      io.Writer
	ErrorOutput io.Writer
}

// Main parses arguments, formats each file and finishes by calling exit, like a command line main.
func (program Program) Main(arguments []string, exit func(int)) {
	if exit == nil {
		exit = os.Exit
	}
	output := program.Output
	if output == nil {
		output = os.Stdout
	}
	errorOutput := program.ErrorOutput
	if errorOutput == nil {
		errorOutput = os.Stderr
	}

	flagSet := pflag.NewFlagSet(programNameConstant, pflag.ContinueOnError)
	flagSet.SetOutput(errorOutput)
	replace := flagSet.BoolP(replaceFlagNameConstant, replaceFlagShorthandConstant, false, replaceFlagUsageConstant)
	organizeImports := flagSet.Bool(importsFlagNameConstant, false, importsFlagUsageConstant)
	if parseError := flagSet.Parse(arguments); parseError != nil {
		fmt.Fprintf(errorOutput, diagnosticTemplateConstant, programNameConstant, parseError)
		exit(ExitCodeFailure)
		return
	}

	filePaths := flagSet.Args()
	if len(filePaths) == 0 {
		fmt.Fprintf(errorOutput, diagnosticTemplateConstant, programNameConstant, errNoFiles)
		exit(ExitCodeFailure)
		return
	}

	exitCode := ExitCodeSuccess
	for _, filePath := range filePaths {
		if fileError := formatFile(filePath, *replace, *organizeImports, output); fileError != nil {
			fmt.Fprintf(errorOutput, diagnosticTemplateConstant, filePath, fileError)
			exitCode = ExitCodeFailure
		}
	}
	exit(exitCode)
}

func formatFile(filePath string, replace bool, organizeImports bool, output io.Writer) error {
	fileInfo, statError := os.Stat(filePath)
	if statError != nil {
		return statError
	}
	source, readError := os.ReadFile(filePath)
	if readError != nil {
		return readError
	}

	formatted, formatError := formatSource(filePath, source, organizeImports)
	if formatError != nil {
		return formatError
	}

	if !replace {
		_, writeError := output.Write(formatted)
		return writeError
	}
	if bytes.Equal(source, formatted) {
		return nil
	}
	return os.WriteFile(filePath, formatted, fileInfo.Mode().Perm())
}

func formatSource(filePath string, source []byte, organizeImports bool) ([]byte, error) {
	if !organizeImports {
		return format.Source(source)
	}
	return imports.Process(filePath, source, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  importsTabWidthConstant,
	})
}
