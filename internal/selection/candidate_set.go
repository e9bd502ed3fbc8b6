package selection

import (
	"path/filepath"
	"sort"
)

// CandidateFileSet is a set of absolute file paths selected for processing.
// The zero value is an empty set ready for use.
type CandidateFileSet map[string]struct{}

// NewCandidateFileSet builds a set from the provided paths, cleaning each one.
func NewCandidateFileSet(paths ...string) CandidateFileSet {
	set := make(CandidateFileSet, len(paths))
	for _, path := range paths {
		set.Add(path)
	}
	return set
}

// Add inserts path into the set, allocating the set on first use.
func (set *CandidateFileSet) Add(path string) {
	if len(path) == 0 {
		return
	}
	if *set == nil {
		*set = make(CandidateFileSet)
	}
	(*set)[filepath.Clean(path)] = struct{}{}
}

// Contains reports whether path is part of the set.
func (set CandidateFileSet) Contains(path string) bool {
	_, exists := set[filepath.Clean(path)]
	return exists
}

// Len returns the number of unique paths.
func (set CandidateFileSet) Len() int {
	return len(set)
}

// Union returns a new set holding every path of set and other.
func (set CandidateFileSet) Union(other CandidateFileSet) CandidateFileSet {
	union := make(CandidateFileSet, len(set)+len(other))
	for path := range set {
		union[path] = struct{}{}
	}
	for path := range other {
		union[path] = struct{}{}
	}
	return union
}

// Intersection returns a new set holding the paths present in both sets.
func (set CandidateFileSet) Intersection(other CandidateFileSet) CandidateFileSet {
	intersection := make(CandidateFileSet)
	for path := range set {
		if _, exists := other[path]; exists {
			intersection[path] = struct{}{}
		}
	}
	return intersection
}

// Sorted materializes the set in lexicographic order.
func (set CandidateFileSet) Sorted() []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
