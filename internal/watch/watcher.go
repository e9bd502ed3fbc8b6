// Package watch re-triggers the format step when source files change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	hiddenDirectoryPrefixConstant      = "."
	watchingMessageConstant            = "watching source directories for changes"
	missingDirectoryMessageConstant    = "source directory does not exist, not watching it"
	watcherErrorMessageConstant        = "file watcher reported an error"
	newDirectoryFailureMessageConstant = "failed to watch new directory"
	changeDetectedMessageConstant      = "source change detected"
	nothingToWatchMessageConstant      = "no existing source directories to watch"
	logFieldDirectoryCountConstant     = "directory_count"
	logFieldDirectoryConstant          = "directory"
	logFieldProjectRootConstant        = "project_root"
	logFieldFileCountConstant          = "file_count"
)

// ErrNothingToWatch indicates that none of the target directories exist.
var ErrNothingToWatch = errors.New(nothingToWatchMessageConstant)

// Target pairs a project root with the source directories that belong to it.
type Target struct {
	ProjectRoot string
	Directories []string
}

// Event reports the changed files of one project root after the debounce window closed.
type Event struct {
	ProjectRoot  string
	ChangedFiles []string
}

// Callback receives debounced change events. Callbacks run one at a time on the watch loop.
type Callback func(Event)

// Watcher monitors source directories recursively and reports debounced changes.
type Watcher struct {
	logger       *zap.Logger
	debounce     time.Duration
	sourceSuffix string
	Ready        chan struct{}

	newWatcher func() (*fsnotify.Watcher, error)
}

// NewWatcher creates a Watcher reporting files ending in sourceSuffix.
func NewWatcher(logger *zap.Logger, debounce time.Duration, sourceSuffix string) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		logger:       logger,
		debounce:     debounce,
		sourceSuffix: sourceSuffix,
		Ready:        make(chan struct{}),
		newWatcher:   fsnotify.NewWatcher,
	}
}

type watchedDirectory struct {
	directory   string
	projectRoot string
}

// Watch blocks until the context is cancelled, invoking callback for every debounced change.
func (watcher *Watcher) Watch(executionContext context.Context, targets []Target, callback Callback) error {
	notifier, notifierError := watcher.newWatcher()
	if notifierError != nil {
		return notifierError
	}
	defer notifier.Close()

	watchedDirectories := make([]watchedDirectory, 0, len(targets))
	for _, target := range targets {
		for _, directory := range target.Directories {
			absoluteDirectory, absoluteError := filepath.Abs(directory)
			if absoluteError != nil {
				return absoluteError
			}
			if _, statError := os.Stat(absoluteDirectory); statError != nil {
				watcher.logger.Info(missingDirectoryMessageConstant, zap.String(logFieldDirectoryConstant, absoluteDirectory))
				continue
			}
			if addError := watcher.addRecursive(notifier, absoluteDirectory); addError != nil {
				return addError
			}
			watchedDirectories = append(watchedDirectories, watchedDirectory{directory: absoluteDirectory, projectRoot: target.ProjectRoot})
		}
	}
	if len(watchedDirectories) == 0 {
		return ErrNothingToWatch
	}
	// Longest directories first so nested source directories win over their parents.
	sort.Slice(watchedDirectories, func(left int, right int) bool {
		return len(watchedDirectories[left].directory) > len(watchedDirectories[right].directory)
	})

	watcher.logger.Info(watchingMessageConstant, zap.Int(logFieldDirectoryCountConstant, len(watchedDirectories)))
	if watcher.Ready != nil {
		close(watcher.Ready)
	}

	firedRoots := make(chan string, len(watchedDirectories))
	pendingFiles := make(map[string]map[string]struct{})
	debounceTimers := make(map[string]*time.Timer)
	defer func() {
		for _, timer := range debounceTimers {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-executionContext.Done():
			return executionContext.Err()
		case notifierError, open := <-notifier.Errors:
			if !open {
				return nil
			}
			watcher.logger.Warn(watcherErrorMessageConstant, zap.Error(notifierError))
		case event, open := <-notifier.Events:
			if !open {
				return nil
			}
			changedPath, relevant := watcher.handleEvent(notifier, event)
			if !relevant {
				continue
			}
			projectRoot, matched := matchProjectRoot(watchedDirectories, changedPath)
			if !matched {
				continue
			}
			if pendingFiles[projectRoot] == nil {
				pendingFiles[projectRoot] = make(map[string]struct{})
			}
			pendingFiles[projectRoot][changedPath] = struct{}{}
			if timer := debounceTimers[projectRoot]; timer != nil {
				timer.Stop()
			}
			debounceTimers[projectRoot] = time.AfterFunc(watcher.debounce, func() {
				select {
				case firedRoots <- projectRoot:
				case <-executionContext.Done():
				}
			})
		case projectRoot := <-firedRoots:
			changedFiles := sortedKeys(pendingFiles[projectRoot])
			delete(pendingFiles, projectRoot)
			delete(debounceTimers, projectRoot)
			if len(changedFiles) == 0 {
				continue
			}
			watcher.logger.Info(changeDetectedMessageConstant,
				zap.String(logFieldProjectRootConstant, projectRoot),
				zap.Int(logFieldFileCountConstant, len(changedFiles)),
			)
			callback(Event{ProjectRoot: projectRoot, ChangedFiles: changedFiles})
		}
	}
}

// handleEvent starts watching new directories and reports whether event concerns a source file.
func (watcher *Watcher) handleEvent(notifier *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}

	if event.Has(fsnotify.Create) {
		fileInfo, statError := os.Stat(event.Name)
		if statError == nil && fileInfo.IsDir() {
			if addError := watcher.addRecursive(notifier, event.Name); addError != nil {
				watcher.logger.Warn(newDirectoryFailureMessageConstant, zap.String(logFieldDirectoryConstant, event.Name), zap.Error(addError))
			}
			return "", false
		}
	}

	if !strings.HasSuffix(event.Name, watcher.sourceSuffix) {
		return "", false
	}
	return filepath.Clean(event.Name), true
}

// addRecursive watches root and every non-hidden directory below it.
func (watcher *Watcher) addRecursive(notifier *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(directoryEntry.Name(), hiddenDirectoryPrefixConstant) {
			return filepath.SkipDir
		}
		return notifier.Add(path)
	})
}

func matchProjectRoot(watchedDirectories []watchedDirectory, changedPath string) (string, bool) {
	for _, watched := range watchedDirectories {
		if changedPath == watched.directory || strings.HasPrefix(changedPath, watched.directory+string(filepath.Separator)) {
			return watched.projectRoot, true
		}
	}
	return "", false
}

func sortedKeys(values map[string]struct{}) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
