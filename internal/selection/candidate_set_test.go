package selection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fmtstep/internal/selection"
)

const (
	testFooPathConstant = "/x/Foo.go"
	testBarPathConstant = "/x/Bar.go"
	testBazPathConstant = "/y/Baz.go"
)

func TestCandidateFileSetUnionCollapsesDuplicates(testInstance *testing.T) {
	first := selection.NewCandidateFileSet(testFooPathConstant)
	second := selection.NewCandidateFileSet(testFooPathConstant, testBarPathConstant)

	union := first.Union(second)

	require.Equal(testInstance, 2, union.Len())
	require.Equal(testInstance, union, second.Union(first))
	require.Equal(testInstance, union, union.Union(union))
	require.Equal(testInstance, 1, first.Len())
}

func TestCandidateFileSetCleansPaths(testInstance *testing.T) {
	set := selection.NewCandidateFileSet("/x/./Foo.go", "/x/sub/../Foo.go", "")

	require.Equal(testInstance, 1, set.Len())
	require.True(testInstance, set.Contains(testFooPathConstant))
}

func TestCandidateFileSetSortedIsLexicographic(testInstance *testing.T) {
	set := selection.NewCandidateFileSet(testBazPathConstant, testFooPathConstant, testBarPathConstant)

	require.Equal(testInstance, []string{testBarPathConstant, testFooPathConstant, testBazPathConstant}, set.Sorted())
	require.Empty(testInstance, selection.NewCandidateFileSet().Sorted())
}

func TestCandidateFileSetIntersection(testInstance *testing.T) {
	candidates := selection.NewCandidateFileSet(testFooPathConstant, testBarPathConstant)
	changed := selection.NewCandidateFileSet(testBarPathConstant, testBazPathConstant)

	intersection := candidates.Intersection(changed)

	require.Equal(testInstance, []string{testBarPathConstant}, intersection.Sorted())
	require.Zero(testInstance, candidates.Intersection(selection.NewCandidateFileSet()).Len())
}

func TestCandidateFileSetZeroValueIsUsable(testInstance *testing.T) {
	var set selection.CandidateFileSet

	require.Zero(testInstance, set.Len())
	require.False(testInstance, set.Contains(testFooPathConstant))
	require.Empty(testInstance, set.Sorted())

	set.Add(testFooPathConstant)
	set.Add("")

	require.Equal(testInstance, 1, set.Len())
	require.True(testInstance, set.Contains(testFooPathConstant))
	require.Equal(testInstance, []string{testFooPathConstant}, set.Sorted())
	require.Equal(testInstance, 2, set.Union(selection.NewCandidateFileSet(testBarPathConstant)).Len())
}
