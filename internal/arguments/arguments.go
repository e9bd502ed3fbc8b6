// Package arguments builds the argument vector passed to the formatter entry point.
package arguments

import (
	"fmt"
	"strings"

	"github.com/temirov/fmtstep/internal/selection"
)

const (
	// ReplaceFlag instructs the formatter to rewrite files in place.
	ReplaceFlag = "--replace"
	// AlternateStyleFlag selects the alternate formatting style.
	AlternateStyleFlag = "--imports"

	unsupportedStyleTemplateConstant = "unsupported style: %s"
)

// Style selects the flag set emitted by Build.
type Style string

// Supported styles.
const (
	StyleDefault   Style = "default"
	StyleAlternate Style = "alternate"
)

// SupportedStyles lists the accepted style names in display order.
func SupportedStyles() []string {
	return []string{string(StyleDefault), string(StyleAlternate)}
}

// ParseStyle converts a textual style into a Style. Blank values select StyleDefault.
func ParseStyle(rawStyle string) (Style, error) {
	normalizedStyle := strings.ToLower(strings.TrimSpace(rawStyle))
	switch Style(normalizedStyle) {
	case "", StyleDefault:
		return StyleDefault, nil
	case StyleAlternate:
		return StyleAlternate, nil
	default:
		return "", fmt.Errorf(unsupportedStyleTemplateConstant, rawStyle)
	}
}

// FlagCount returns the number of leading flags Build emits for style.
func FlagCount(style Style) int {
	if style == StyleAlternate {
		return 2
	}
	return 1
}

// Build returns the flags for style followed by every file in lexicographic order.
func Build(style Style, files selection.CandidateFileSet) []string {
	sortedFiles := files.Sorted()
	invocationArguments := make([]string, 0, FlagCount(style)+len(sortedFiles))

	invocationArguments = append(invocationArguments, ReplaceFlag)
	if style == StyleAlternate {
		invocationArguments = append(invocationArguments, AlternateStyleFlag)
	}

	return append(invocationArguments, sortedFiles...)
}
