package domain

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Fold(t *testing.T) {
	report := make(Report)
	report.Fold(RepoCounts{Repository: "org/a", Counts: Counts{PRsOpened: 1, PRsMerged: 1}})
	report.Fold(RepoCounts{Repository: "org/a", Counts: Counts{PRsOpened: 2, IssuesOpened: 3}})
	report.Fold(RepoCounts{Repository: "org/b", Counts: Counts{}})

	assert.Equal(t, Report{
		"org/a": {PRsOpened: 3, PRsMerged: 1, IssuesOpened: 3},
		"org/b": {},
	}, report)

	report.Prune()
	assert.Equal(t, Report{"org/a": {PRsOpened: 3, PRsMerged: 1, IssuesOpened: 3}}, report)
}

func TestFoldAll_DropsInactiveRepositories(t *testing.T) {
	report := FoldAll([]RepoCounts{
		{Repository: "org/a", Counts: Counts{IssuesOpened: 1}},
		{Repository: "org/b"},
		{Repository: "org/c", Counts: Counts{PRsOpened: 1}},
	})

	assert.Equal(t, Report{
		"org/a": {IssuesOpened: 1},
		"org/c": {PRsOpened: 1},
	}, report)
}

// permutations returns every ordering of the indices 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			next := make([]int, 0, n)
			next = append(next, p[:i]...)
			next = append(next, n-1)
			next = append(next, p[i:]...)
			out = append(out, next)
		}
	}
	return out
}

func TestFoldAll_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		n := 1 + rng.Intn(6)
		partials := make([]RepoCounts, n)
		for i := range partials {
			opened := rng.Intn(5)
			partials[i] = RepoCounts{
				// Few distinct repositories so that entries collide during the fold.
				Repository: fmt.Sprintf("org/repo-%d", rng.Intn(3)),
				Counts: Counts{
					PRsOpened:    opened,
					PRsMerged:    rng.Intn(opened + 1),
					IssuesOpened: rng.Intn(5),
				},
			}
		}

		expected := FoldAll(partials)
		for _, perm := range permutations(n) {
			shuffled := make([]RepoCounts, n)
			for i, idx := range perm {
				shuffled[i] = partials[idx]
			}
			require.Equal(t, expected, FoldAll(shuffled), "round %d permutation %v", round, perm)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	testCases := []struct {
		in          string
		expected    Strategy
		expectError bool
	}{
		{in: "", expected: StrategyPerRepository},
		{in: "per-repository", expected: StrategyPerRepository},
		{in: "per-contributor", expected: StrategyPerContributor},
		{in: "per-team", expectError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStrategy(tc.in)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
