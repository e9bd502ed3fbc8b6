package flags

import (
	"strings"
)

const (
	choiceListOpenConstant      = "`<"
	choiceListCloseConstant     = ">`"
	choiceSeparatorConstant     = "|"
	descriptionSeparatorLiteral = " "
)

// FormatChoiceUsage renders "`<a|B|c>` description" for a flag accepting one of choices, upper-casing the default.
// pflag shows the back-quoted part as the flag's value placeholder. Choices are trimmed and de-duplicated
// case-insensitively, keeping the first spelling.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))

	var usageBuilder strings.Builder
	usageBuilder.WriteString(choiceListOpenConstant)
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		if len(seenChoices) > 0 {
			usageBuilder.WriteString(choiceSeparatorConstant)
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		usageBuilder.WriteString(trimmedChoice)
	}
	usageBuilder.WriteString(choiceListCloseConstant)

	if trimmedDescription := strings.TrimSpace(description); len(trimmedDescription) > 0 {
		usageBuilder.WriteString(descriptionSeparatorLiteral)
		usageBuilder.WriteString(trimmedDescription)
	}
	return usageBuilder.String()
}
