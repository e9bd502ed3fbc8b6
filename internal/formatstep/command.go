package formatstep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/fmtstep/internal/arguments"
	"github.com/temirov/fmtstep/internal/changes"
	"github.com/temirov/fmtstep/internal/execshell"
	"github.com/temirov/fmtstep/internal/invocation"
	"github.com/temirov/fmtstep/internal/selection"
	"github.com/temirov/fmtstep/internal/utils/flags"
)

const (
	formatCommandUseConstant              = "format [project-root...]"
	formatCommandShortDescriptionConstant = "Reformat stale or modified Go sources"
	formatCommandLongDescriptionConstant  = "format selects the source files whose artifacts are missing or out of date, optionally narrows them to the files the working copy reports as modified, and runs the formatter on them in process."
	packagingFlagNameConstant             = "packaging"
	packagingFlagUsageConstant            = "Project packaging; aggregator projects are skipped"
	skipFlagNameConstant                  = "skip"
	skipFlagUsageConstant                 = "Skip the format step"
	includeStaleFlagNameConstant          = "include-stale"
	includeStaleFlagUsageConstant         = "Select every source file instead of only stale ones"
	filterModifiedFlagNameConstant        = "filter-modified"
	filterModifiedFlagUsageConstant       = "Only reformat files reported as modified by version control"
	styleFlagNameConstant                 = "style"
	styleFlagUsageConstant                = "Formatting style"
	vcsBackendFlagNameConstant            = "vcs-backend"
	vcsBackendFlagUsageConstant           = "Version control status backend"
	commandExecutionErrorTemplateConstant = "format step failed: %w"
	invalidStyleErrorTemplateConstant     = "invalid style: %w"
	projectRootErrorTemplateConstant      = "unable to resolve project root %s: %w"
	formatStepCompletedMessageConstant    = "format step completed"
	logFieldOutcomeConstant               = "outcome"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current format step configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the format and watch commands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Guard                 *invocation.Guard
	EntryPoint            EntryPoint
	GitExecutor           changes.GitExecutor
	WorkingDirectory      string
}

// Build constructs the format command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	formatCommand := &cobra.Command{
		Use:   formatCommandUseConstant,
		Short: formatCommandShortDescriptionConstant,
		Long:  formatCommandLongDescriptionConstant,
		RunE:  builder.runFormat,
	}
	builder.bindFlags(formatCommand)
	return formatCommand, nil
}

func (builder *CommandBuilder) bindFlags(command *cobra.Command) {
	defaults := DefaultConfiguration()
	command.Flags().String(packagingFlagNameConstant, "", packagingFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, skipFlagNameConstant, "", defaults.Skip, skipFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, includeStaleFlagNameConstant, "", defaults.IncludeStale, includeStaleFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, filterModifiedFlagNameConstant, "", defaults.FilterModified, filterModifiedFlagUsageConstant)
	command.Flags().String(styleFlagNameConstant, "", flags.FormatChoiceUsage(defaults.Style, arguments.SupportedStyles(), styleFlagUsageConstant))
	command.Flags().String(vcsBackendFlagNameConstant, "", flags.FormatChoiceUsage(defaults.VCS.Backend, []string{changes.BackendNative, changes.BackendCLI}, vcsBackendFlagUsageConstant))
}

func (builder *CommandBuilder) runFormat(command *cobra.Command, commandArguments []string) error {
	plan, planError := builder.preparePlan(command, commandArguments)
	if planError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, planError)
	}

	if executionError := plan.runAll(command.Context()); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

// runPlan holds everything needed to run the step for a set of project roots.
type runPlan struct {
	logger        *zap.Logger
	service       *Service
	configuration Configuration
	style         arguments.Style
	projectRoots  []string
}

func (plan runPlan) optionsFor(projectRoot string) Options {
	return Options{
		Packaging:      ParsePackaging(plan.configuration.Packaging),
		Skip:           plan.configuration.Skip,
		IncludeStale:   plan.configuration.IncludeStale,
		FilterModified: plan.configuration.FilterModified,
		Style:          plan.style,
		ProjectRoot:    projectRoot,
		DirectoryPairs: plan.configuration.DirectoryPairs(projectRoot),
		Connection:     plan.configuration.VCS.ConnectionSettings(),
	}
}

func (plan runPlan) runOne(executionContext context.Context, projectRoot string) error {
	result, runError := plan.service.Run(executionContext, plan.optionsFor(projectRoot))
	if runError != nil {
		return runError
	}
	plan.logger.Info(formatStepCompletedMessageConstant,
		zap.String(logFieldProjectRootConstant, projectRoot),
		zap.String(logFieldOutcomeConstant, string(result.Outcome)),
		zap.Int(logFieldFileCountConstant, len(result.SelectedFiles)),
	)
	return nil
}

func (plan runPlan) runAll(executionContext context.Context) error {
	if executionContext == nil {
		executionContext = context.Background()
	}
	group, groupContext := errgroup.WithContext(executionContext)
	for _, projectRoot := range plan.projectRoots {
		group.Go(func() error {
			return plan.runOne(groupContext, projectRoot)
		})
	}
	return group.Wait()
}

func (builder *CommandBuilder) preparePlan(command *cobra.Command, commandArguments []string) (runPlan, error) {
	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return runPlan{}, configurationError
	}

	style, styleError := arguments.ParseStyle(configuration.Style)
	if styleError != nil {
		return runPlan{}, fmt.Errorf(invalidStyleErrorTemplateConstant, styleError)
	}

	projectRoots, rootsError := builder.resolveProjectRoots(commandArguments, configuration.Roots)
	if rootsError != nil {
		return runPlan{}, rootsError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.buildService(logger, configuration)
	if serviceError != nil {
		return runPlan{}, serviceError
	}

	return runPlan{
		logger:        logger,
		service:       service,
		configuration: configuration,
		style:         style,
		projectRoots:  projectRoots,
	}, nil
}

func (builder *CommandBuilder) buildService(logger *zap.Logger, configuration Configuration) (*Service, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	statusProvider, providerError := changes.ResolveStatusProvider(configuration.VCS.Backend, gitExecutor)
	if providerError != nil {
		return nil, providerError
	}

	guard := builder.Guard
	if guard == nil {
		guard = invocation.NewGuard(nil, invocation.NewLoggingTrapObserver(logger))
	}

	return NewService(ServiceDependencies{
		Logger:     logger,
		Scanner:    selection.NewScanner(logger, nil, configuration.StalenessTolerance),
		Filter:     changes.NewFilter(statusProvider, logger),
		Artifacts:  selection.NewArtifactRecorder(logger),
		Guard:      guard,
		EntryPoint: builder.EntryPoint,
	})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) (Configuration, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command != nil {
		commandFlags := command.Flags()
		if commandFlags.Changed(packagingFlagNameConstant) {
			packagingValue, packagingError := commandFlags.GetString(packagingFlagNameConstant)
			if packagingError != nil {
				return Configuration{}, packagingError
			}
			configuration.Packaging = packagingValue
		}
		for flagName, target := range map[string]*bool{
			skipFlagNameConstant:           &configuration.Skip,
			includeStaleFlagNameConstant:   &configuration.IncludeStale,
			filterModifiedFlagNameConstant: &configuration.FilterModified,
		} {
			if !commandFlags.Changed(flagName) {
				continue
			}
			flagValue, flagError := commandFlags.GetBool(flagName)
			if flagError != nil {
				return Configuration{}, flagError
			}
			*target = flagValue
		}
		if commandFlags.Changed(styleFlagNameConstant) {
			styleValue, styleError := commandFlags.GetString(styleFlagNameConstant)
			if styleError != nil {
				return Configuration{}, styleError
			}
			configuration.Style = styleValue
		}
		if commandFlags.Changed(vcsBackendFlagNameConstant) {
			backendValue, backendError := commandFlags.GetString(vcsBackendFlagNameConstant)
			if backendError != nil {
				return Configuration{}, backendError
			}
			configuration.VCS.Backend = backendValue
		}
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveProjectRoots(commandArguments []string, configuredRoots []string) ([]string, error) {
	candidateRoots := sanitizePaths(commandArguments)
	if len(candidateRoots) == 0 {
		candidateRoots = configuredRoots
	}
	if len(candidateRoots) == 0 {
		workingDirectory := builder.WorkingDirectory
		if len(workingDirectory) == 0 {
			currentDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return nil, workingDirectoryError
			}
			workingDirectory = currentDirectory
		}
		candidateRoots = []string{workingDirectory}
	}

	projectRoots := make([]string, 0, len(candidateRoots))
	seenRoots := make(map[string]struct{}, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		absoluteRoot, absoluteError := filepath.Abs(candidateRoot)
		if absoluteError != nil {
			return nil, fmt.Errorf(projectRootErrorTemplateConstant, candidateRoot, absoluteError)
		}
		if _, seen := seenRoots[absoluteRoot]; seen {
			continue
		}
		seenRoots[absoluteRoot] = struct{}{}
		projectRoots = append(projectRoots, absoluteRoot)
	}
	return projectRoots, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
