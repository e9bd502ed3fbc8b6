package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fmtstep/internal/utils"
)

const (
	configurationCommandUseConstant              = "config"
	configurationCommandShortDescriptionConstant = "Print the effective configuration"
	configurationCommandLongDescriptionConstant  = "config prints the configuration fmtstep resolved from its embedded defaults, the configuration file and FMTSTEP_ environment variables, as YAML."
	configurationSourceHeaderTemplateConstant    = "# configuration file: %s\n"
	configurationRenderErrorTemplateConstant     = "unable to render configuration: %w"
	configurationUnavailableMessageConstant      = "configuration not loaded"
)

var errConfigurationUnavailable = errors.New(configurationUnavailableMessageConstant)

type configurationCommandBuilder struct {
	contextAccessor utils.CommandContextAccessor
}

// Build constructs the config command.
func (builder configurationCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   configurationCommandUseConstant,
		Short: configurationCommandShortDescriptionConstant,
		Long:  configurationCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder configurationCommandBuilder) run(command *cobra.Command, _ []string) error {
	loadedConfiguration, available := builder.contextAccessor.LoadedConfiguration(command.Context())
	if !available {
		return errConfigurationUnavailable
	}

	renderedConfiguration, renderError := yaml.Marshal(loadedConfiguration.Settings)
	if renderError != nil {
		return fmt.Errorf(configurationRenderErrorTemplateConstant, renderError)
	}

	output := command.OutOrStdout()
	if len(loadedConfiguration.ConfigFileUsed) > 0 {
		if _, writeError := fmt.Fprintf(output, configurationSourceHeaderTemplateConstant, loadedConfiguration.ConfigFileUsed); writeError != nil {
			return writeError
		}
	}
	_, writeError := output.Write(renderedConfiguration)
	return writeError
}
