package invocation

import (
	"fmt"
	"os"
	"sync"
)

const (
	terminationAttemptMessageTemplateConstant = "termination attempted with exit code %d"
)

// ExitFunction terminates the process with the provided exit code.
type ExitFunction func(exitCode int)

// Action is a unit of work executed under the guard.
type Action func() error

// TerminationAttempt is raised by Guard.Exit while the termination trap is installed.
type TerminationAttempt struct {
	ExitCode int
}

// Error describes the intercepted termination.
func (attempt TerminationAttempt) Error() string {
	return fmt.Sprintf(terminationAttemptMessageTemplateConstant, attempt.ExitCode)
}

// Guard reference-counts guarded invocations and owns the termination trap.
// A single Guard is meant to be shared by every caller in the process.
type Guard struct {
	exitFunction      ExitFunction
	observer          TrapObserver
	mutex             sync.Mutex
	activeInvocations int
	trapInstalled     bool
}

// NewGuard constructs a Guard. A nil exit function falls back to os.Exit and a nil observer discards notifications.
func NewGuard(exitFunction ExitFunction, observer TrapObserver) *Guard {
	if exitFunction == nil {
		exitFunction = os.Exit
	}
	if observer == nil {
		observer = noopTrapObserver{}
	}
	return &Guard{exitFunction: exitFunction, observer: observer}
}

// Invoke runs action with the termination trap installed. Termination attempts
// made through Exit are swallowed; errors returned by action are returned
// unchanged and other panics are re-raised once the invocation is released.
func (guard *Guard) Invoke(action Action) error {
	guard.acquire()
	defer guard.release()

	return guard.run(action)
}

// Exit is the termination primitive handed to guarded entry points. It must be
// called from the goroutine running the guarded action. The trap is process
// wide: while any invocation is active, Exit panics with a TerminationAttempt
// even when called outside Invoke, and such a panic on another goroutine is
// not recovered. The real exit function runs only when no invocation is active.
func (guard *Guard) Exit(exitCode int) {
	if guard.TrapInstalled() {
		panic(TerminationAttempt{ExitCode: exitCode})
	}
	guard.exitFunction(exitCode)
}

// ActiveInvocations reports how many guarded invocations are currently running.
func (guard *Guard) ActiveInvocations() int {
	guard.mutex.Lock()
	defer guard.mutex.Unlock()
	return guard.activeInvocations
}

// TrapInstalled reports whether termination attempts are currently intercepted.
func (guard *Guard) TrapInstalled() bool {
	guard.mutex.Lock()
	defer guard.mutex.Unlock()
	return guard.trapInstalled
}

func (guard *Guard) acquire() {
	guard.mutex.Lock()
	defer guard.mutex.Unlock()

	guard.activeInvocations++
	if guard.activeInvocations == 1 {
		guard.trapInstalled = true
		guard.observer.TrapInstalled()
	}
}

func (guard *Guard) release() {
	guard.mutex.Lock()
	defer guard.mutex.Unlock()

	if guard.activeInvocations == 0 {
		return
	}
	guard.activeInvocations--
	if guard.activeInvocations == 0 {
		guard.trapInstalled = false
		guard.observer.TrapRemoved()
	}
}

func (guard *Guard) run(action Action) (actionError error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		attempt, isTerminationAttempt := recovered.(TerminationAttempt)
		if !isTerminationAttempt {
			panic(recovered)
		}
		guard.observer.TerminationIntercepted(attempt)
		actionError = nil
	}()

	if action == nil {
		return nil
	}
	return action()
}
