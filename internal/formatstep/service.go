package formatstep

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fmtstep/internal/arguments"
	"github.com/temirov/fmtstep/internal/changes"
	"github.com/temirov/fmtstep/internal/formatter"
	"github.com/temirov/fmtstep/internal/invocation"
	"github.com/temirov/fmtstep/internal/selection"
)

// Packaging classifies a project. Aggregator projects carry no sources of their own.
type Packaging string

// Supported packaging kinds.
const (
	PackagingModule     Packaging = "module"
	PackagingAggregator Packaging = "aggregator"
)

// Outcome reports how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeGated       Outcome = "gated"
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomeInvoked     Outcome = "invoked"
)

const (
	aggregatorGateMessageConstant      = "skipping format step for aggregator packaging"
	skipGateMessageConstant            = "format step skipped by configuration"
	nothingToDoMessageConstant         = "no files to reformat"
	invokingEntryPointMessageConstant  = "reformatting files"
	invocationArgumentsMessageConstant = "formatter arguments"
	logFieldProjectRootConstant        = "project_root"
	logFieldPackagingConstant          = "packaging"
	logFieldFileCountConstant          = "file_count"
	logFieldStyleConstant              = "style"
	logFieldArgumentsConstant          = "arguments"
	logFieldFilterModifiedConstant     = "filter_modified"
	logFieldExitCodeConstant           = "exit_code"
	formatterFailedMessageConstant     = "formatter reported failure, artifacts not recorded"
	guardNotConfiguredMessageConstant  = "invocation guard not configured"
)

// ErrGuardNotConfigured indicates the service was built without an invocation guard.
var ErrGuardNotConfigured = errors.New(guardNotConfiguredMessageConstant)

// EntryPoint is a batch main invoked in process. It receives the formatter arguments and the
// termination function it must use instead of ending the process itself.
type EntryPoint func(arguments []string, exit invocation.ExitFunction) error

// ProgramEntryPoint adapts a formatter program to an EntryPoint.
func ProgramEntryPoint(program formatter.Program) EntryPoint {
	return func(arguments []string, exit invocation.ExitFunction) error {
		program.Main(arguments, exit)
		return nil
	}
}

// FileScanner selects candidate files from directory pairs.
type FileScanner interface {
	ScanAll(pairs []selection.DirectoryPair, includeStale bool) (selection.CandidateFileSet, error)
}

// ChangeFilter narrows candidates to modified files.
type ChangeFilter interface {
	Apply(executionContext context.Context, candidates selection.CandidateFileSet, settings changes.ConnectionSettings, projectRoot string) (selection.CandidateFileSet, error)
}

// ArtifactWriter records artifacts for files the formatter processed successfully.
type ArtifactWriter interface {
	Record(pairs []selection.DirectoryPair, files selection.CandidateFileSet) error
}

// Options configure a single run.
type Options struct {
	Packaging      Packaging
	Skip           bool
	IncludeStale   bool
	FilterModified bool
	Style          arguments.Style
	ProjectRoot    string
	DirectoryPairs []selection.DirectoryPair
	Connection     changes.ConnectionSettings
}

// Result summarizes a run.
type Result struct {
	Outcome       Outcome
	SelectedFiles []string
	Arguments     []string
	// ExitCode is the code the entry point attempted to terminate with, or zero when it returned normally.
	ExitCode int
}

// ServiceDependencies enumerates the collaborators required by Service.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Scanner    FileScanner
	Filter     ChangeFilter
	Artifacts  ArtifactWriter
	Guard      *invocation.Guard
	EntryPoint EntryPoint
}

// Service runs the format step.
type Service struct {
	logger     *zap.Logger
	scanner    FileScanner
	filter     ChangeFilter
	artifacts  ArtifactWriter
	guard      *invocation.Guard
	entryPoint EntryPoint
}

// NewService validates dependencies and applies defaults for the optional ones.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Guard == nil {
		return nil, ErrGuardNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scanner := dependencies.Scanner
	if scanner == nil {
		scanner = selection.NewScanner(logger, nil, selection.DefaultStalenessTolerance)
	}
	filter := dependencies.Filter
	if filter == nil {
		filter = changes.NewFilter(nil, logger)
	}
	artifacts := dependencies.Artifacts
	if artifacts == nil {
		artifacts = selection.NewArtifactRecorder(logger)
	}
	entryPoint := dependencies.EntryPoint
	if entryPoint == nil {
		entryPoint = ProgramEntryPoint(formatter.Program{})
	}

	return &Service{
		logger:     logger,
		scanner:    scanner,
		filter:     filter,
		artifacts:  artifacts,
		guard:      dependencies.Guard,
		entryPoint: entryPoint,
	}, nil
}

// Run executes the gate, scan, filter and invoke stages for one project. When the entry point finishes
// without a failing exit code the selected files are recorded as artifacts, so the next run without
// IncludeStale leaves them out until they change.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	if isAggregator(options.Packaging) {
		service.logger.Info(aggregatorGateMessageConstant,
			zap.String(logFieldProjectRootConstant, options.ProjectRoot),
			zap.String(logFieldPackagingConstant, string(options.Packaging)),
		)
		return Result{Outcome: OutcomeGated}, nil
	}
	if options.Skip {
		service.logger.Info(skipGateMessageConstant, zap.String(logFieldProjectRootConstant, options.ProjectRoot))
		return Result{Outcome: OutcomeGated}, nil
	}

	candidates, scanError := service.scanner.ScanAll(options.DirectoryPairs, options.IncludeStale)
	if scanError != nil {
		return Result{}, scanError
	}

	if options.FilterModified {
		filteredCandidates, filterError := service.filter.Apply(executionContext, candidates, options.Connection, options.ProjectRoot)
		if filterError != nil {
			return Result{}, filterError
		}
		candidates = filteredCandidates
	}

	if candidates.Len() == 0 {
		service.logger.Info(nothingToDoMessageConstant,
			zap.String(logFieldProjectRootConstant, options.ProjectRoot),
			zap.Bool(logFieldFilterModifiedConstant, options.FilterModified),
		)
		return Result{Outcome: OutcomeNothingToDo}, nil
	}

	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, contextError
	}

	invocationArguments := arguments.Build(options.Style, candidates)
	service.logger.Info(invokingEntryPointMessageConstant,
		zap.String(logFieldProjectRootConstant, options.ProjectRoot),
		zap.Int(logFieldFileCountConstant, candidates.Len()),
		zap.String(logFieldStyleConstant, string(options.Style)),
	)
	service.logger.Debug(invocationArgumentsMessageConstant, zap.Strings(logFieldArgumentsConstant, invocationArguments))

	exitCode := formatter.ExitCodeSuccess
	trackingExit := func(attemptedExitCode int) {
		exitCode = attemptedExitCode
		service.guard.Exit(attemptedExitCode)
	}
	invokeError := service.guard.Invoke(func() error {
		return service.entryPoint(invocationArguments, trackingExit)
	})
	if invokeError != nil {
		return Result{}, invokeError
	}

	if exitCode == formatter.ExitCodeSuccess {
		if recordError := service.artifacts.Record(options.DirectoryPairs, candidates); recordError != nil {
			return Result{}, recordError
		}
	} else {
		service.logger.Warn(formatterFailedMessageConstant,
			zap.String(logFieldProjectRootConstant, options.ProjectRoot),
			zap.Int(logFieldExitCodeConstant, exitCode),
		)
	}

	return Result{
		Outcome:       OutcomeInvoked,
		SelectedFiles: candidates.Sorted(),
		Arguments:     invocationArguments,
		ExitCode:      exitCode,
	}, nil
}

// ParsePackaging normalizes a packaging name. Blank values select PackagingModule.
func ParsePackaging(rawPackaging string) Packaging {
	normalizedPackaging := strings.ToLower(strings.TrimSpace(rawPackaging))
	if len(normalizedPackaging) == 0 {
		return PackagingModule
	}
	return Packaging(normalizedPackaging)
}

func isAggregator(packaging Packaging) bool {
	return ParsePackaging(string(packaging)) == PackagingAggregator
}
