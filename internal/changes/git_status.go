package changes

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5"
)

// GitStatusProvider reads working copy status through go-git.
type GitStatusProvider struct{}

// NewGitStatusProvider constructs the go-git backed provider.
func NewGitStatusProvider() GitStatusProvider {
	return GitStatusProvider{}
}

// Status opens the repository containing baseDirectory and lists staged, modified and untracked paths.
func (provider GitStatusProvider) Status(executionContext context.Context, connection Connection, baseDirectory string) ([]string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	canonicalBase, canonicalError := canonicalDirectory(baseDirectory)
	if canonicalError != nil {
		return nil, canonicalError
	}

	repository, openError := git.PlainOpenWithOptions(canonicalBase, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, openError
	}

	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return nil, worktreeError
	}

	status, statusError := worktree.Status()
	if statusError != nil {
		return nil, statusError
	}

	changedPaths := make([]string, 0, len(status))
	for repositoryPath, fileStatus := range status {
		if fileStatus == nil {
			continue
		}
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		changedPaths = append(changedPaths, repositoryPath)
	}
	sort.Strings(changedPaths)

	repositoryRoot, rootError := canonicalDirectory(worktree.Filesystem.Root())
	if rootError != nil {
		return nil, rootError
	}
	return relativeToBase(repositoryRoot, canonicalBase, changedPaths), nil
}
