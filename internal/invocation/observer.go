package invocation

import "go.uber.org/zap"

const (
	trapInstalledMessageConstant          = "termination trap installed"
	trapRemovedMessageConstant            = "termination trap removed"
	terminationInterceptedMessageConstant = "intercepted termination attempt"
	logFieldExitCodeConstant              = "exit_code"
)

// TrapObserver receives lifecycle notifications for the termination trap.
type TrapObserver interface {
	// TrapInstalled is called under the guard lock when the first invocation starts.
	TrapInstalled()
	// TrapRemoved is called under the guard lock when the last invocation finishes.
	TrapRemoved()
	// TerminationIntercepted reports a swallowed termination attempt.
	TerminationIntercepted(attempt TerminationAttempt)
}

type noopTrapObserver struct{}

func (noopTrapObserver) TrapInstalled() {}

func (noopTrapObserver) TrapRemoved() {}

func (noopTrapObserver) TerminationIntercepted(TerminationAttempt) {}

// LoggingTrapObserver records trap lifecycle events at debug level.
type LoggingTrapObserver struct {
	logger *zap.Logger
}

// NewLoggingTrapObserver constructs an observer writing to logger.
func NewLoggingTrapObserver(logger *zap.Logger) *LoggingTrapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingTrapObserver{logger: logger}
}

// TrapInstalled implements TrapObserver.
func (observer *LoggingTrapObserver) TrapInstalled() {
	observer.logger.Debug(trapInstalledMessageConstant)
}

// TrapRemoved implements TrapObserver.
func (observer *LoggingTrapObserver) TrapRemoved() {
	observer.logger.Debug(trapRemovedMessageConstant)
}

// TerminationIntercepted implements TrapObserver.
func (observer *LoggingTrapObserver) TerminationIntercepted(attempt TerminationAttempt) {
	observer.logger.Debug(terminationInterceptedMessageConstant, zap.Int(logFieldExitCodeConstant, attempt.ExitCode))
}
