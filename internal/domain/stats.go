// Package domain contains the core data structures and domain logic for the application.
package domain

import "fmt"

// Counts holds the contribution counts for a single repository.
// PRsMerged never exceeds PRsOpened.
type Counts struct {
	PRsOpened    int `json:"prs_opened"`
	PRsMerged    int `json:"prs_merged"`
	IssuesOpened int `json:"issues_opened"`
}

// Add returns the component-wise sum of c and other.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		PRsOpened:    c.PRsOpened + other.PRsOpened,
		PRsMerged:    c.PRsMerged + other.PRsMerged,
		IssuesOpened: c.IssuesOpened + other.IssuesOpened,
	}
}

// HasActivity reports whether any PR or issue was observed.
func (c Counts) HasActivity() bool {
	return c.PRsOpened > 0 || c.IssuesOpened > 0
}

// RepoCounts is the result of one activity call: the counts observed for a
// repository within the slice of work that call owned.
type RepoCounts struct {
	Repository string
	Counts     Counts
}

// Report maps a repository identifier (owner/name) to its aggregated counts.
type Report map[string]Counts

// Fold adds partial into the entry for its repository, creating the entry
// if needed. Partials are summed, never overwritten, so the final report
// does not depend on the order results are folded in.
func (r Report) Fold(partial RepoCounts) {
	r[partial.Repository] = r[partial.Repository].Add(partial.Counts)
}

// Prune removes repositories without any observed activity.
func (r Report) Prune() {
	for repo, counts := range r {
		if !counts.HasActivity() {
			delete(r, repo)
		}
	}
}

// FoldAll builds a pruned report from a set of partial results.
func FoldAll(partials []RepoCounts) Report {
	report := make(Report)
	for _, p := range partials {
		report.Fold(p)
	}
	report.Prune()
	return report
}

// Strategy selects how the fan-out splits work between activity calls.
type Strategy string

const (
	// StrategyPerRepository fetches every issue of a repository once and
	// filters authors locally.
	StrategyPerRepository Strategy = "per-repository"
	// StrategyPerContributor fetches issues once per repository and
	// contributor, filtering authors server-side with the creator parameter.
	// Request volume grows with the size of the contributor set.
	StrategyPerContributor Strategy = "per-contributor"
)

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyPerRepository:
		return StrategyPerRepository, nil
	case StrategyPerContributor:
		return StrategyPerContributor, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (must be %s or %s)", s, StrategyPerRepository, StrategyPerContributor)
	}
}
