package formatstep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fmtstep/internal/watch"
)

const (
	watchCommandUseConstant              = "watch [project-root...]"
	watchCommandShortDescriptionConstant = "Re-run the format step whenever sources change"
	watchCommandLongDescriptionConstant  = "watch runs the format step once, then watches every configured source directory and re-runs the step for the project whose sources changed."
	watchRunFailedMessageConstant        = "format step failed after source change"
	watchCommandErrorTemplateConstant    = "watch failed: %w"
)

// BuildWatch constructs the watch command. It shares flags and configuration with the format command.
func (builder *CommandBuilder) BuildWatch() (*cobra.Command, error) {
	watchCommand := &cobra.Command{
		Use:   watchCommandUseConstant,
		Short: watchCommandShortDescriptionConstant,
		Long:  watchCommandLongDescriptionConstant,
		RunE:  builder.runWatch,
	}
	builder.bindFlags(watchCommand)
	return watchCommand, nil
}

func (builder *CommandBuilder) runWatch(command *cobra.Command, commandArguments []string) error {
	plan, planError := builder.preparePlan(command, commandArguments)
	if planError != nil {
		return fmt.Errorf(watchCommandErrorTemplateConstant, planError)
	}

	parentContext := command.Context()
	if parentContext == nil {
		parentContext = context.Background()
	}
	executionContext, stop := signal.NotifyContext(parentContext, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if initialRunError := plan.runAll(executionContext); initialRunError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, initialRunError)
	}

	watcher := watch.NewWatcher(plan.logger, plan.configuration.Watch.Debounce, plan.configuration.SourceSuffix)
	watchError := watcher.Watch(executionContext, plan.watchTargets(), func(event watch.Event) {
		if runError := plan.runOne(executionContext, event.ProjectRoot); runError != nil {
			plan.logger.Error(watchRunFailedMessageConstant,
				zap.String(logFieldProjectRootConstant, event.ProjectRoot),
				zap.Error(runError),
			)
		}
	})
	if watchError != nil && !errors.Is(watchError, context.Canceled) {
		return fmt.Errorf(watchCommandErrorTemplateConstant, watchError)
	}
	return nil
}

func (plan runPlan) watchTargets() []watch.Target {
	targets := make([]watch.Target, 0, len(plan.projectRoots))
	for _, projectRoot := range plan.projectRoots {
		directoryPairs := plan.configuration.DirectoryPairs(projectRoot)
		directories := make([]string, 0, len(directoryPairs))
		for _, directoryPair := range directoryPairs {
			directories = append(directories, directoryPair.SourceDirectory)
		}
		targets = append(targets, watch.Target{ProjectRoot: projectRoot, Directories: directories})
	}
	return targets
}
