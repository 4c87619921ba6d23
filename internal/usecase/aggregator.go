// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/osci-stats/internal/domain"
	"github.com/naka-gawa/osci-stats/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// Request holds the resolved inputs of one aggregation run.
type Request struct {
	Owner string
	// Since is the inclusive cutoff date (YYYY-MM-DD); empty disables it.
	Since        string
	Contributors domain.ContributorSet
}

// Aggregator is the use case for aggregating contributor activity.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      *log.Logger
	strategy    domain.Strategy
	concurrency int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithStrategy selects how work is split between activity calls.
func WithStrategy(s domain.Strategy) Option {
	return func(a *Aggregator) {
		a.strategy = s
	}
}

// WithConcurrency caps the number of activity calls in flight.
// Zero or less leaves the fan-out unbounded.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.concurrency = n
	}
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &Aggregator{
		fetcher:  fetcher,
		logger:   logger,
		strategy: domain.StrategyPerRepository,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// activityCall is the slice of work owned by one concurrent call: a
// repository, optionally narrowed server-side to a single creator.
type activityCall struct {
	repo    string
	creator string
}

// Aggregate performs the main business logic.
// It lists the owner's repositories, fetches every repository's activity
// concurrently and folds the partial counts into a single report. The first
// failing call cancels the rest and no report is returned.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (domain.Report, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	repos, err := a.fetcher.ListRepositories(ctx, req.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate repositories of %s: %w", req.Owner, err)
	}

	calls := a.plan(repos, req.Contributors)
	a.logger.Printf("Usecase: %d repositories, %d contributors, %d activity calls (%s).",
		len(repos), req.Contributors.Len(), len(calls), a.strategy)

	// Each call writes only its own slot, so the slice needs no locking.
	results := make([]domain.RepoCounts, len(calls))

	eg, egCtx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		eg.SetLimit(a.concurrency)
	}
	for i, call := range calls {
		eg.Go(func() error {
			counts, err := a.RepositoryActivity(egCtx, call.repo, gateway.IssueFilter{Since: req.Since, Creator: call.creator}, req.Contributors)
			if err != nil {
				return err
			}
			results[i] = domain.RepoCounts{Repository: call.repo, Counts: counts}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")

	report := domain.FoldAll(results)
	a.logger.Printf("Usecase: Aggregation complete, %d repositories with activity.", len(report))
	return report, nil
}

// RepositoryActivity counts the activity of contributors in one repository.
func (a *Aggregator) RepositoryActivity(ctx context.Context, repo string, filter gateway.IssueFilter, contributors domain.ContributorSet) (domain.Counts, error) {
	items, err := a.fetcher.ListIssues(ctx, repo, filter)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("failed to fetch activity of %s: %w", repo, err)
	}
	return domain.CountActivity(items, contributors), nil
}

// plan expands the repository list into the calls of the selected strategy.
func (a *Aggregator) plan(repos []string, contributors domain.ContributorSet) []activityCall {
	if a.strategy != domain.StrategyPerContributor {
		calls := make([]activityCall, 0, len(repos))
		for _, repo := range repos {
			calls = append(calls, activityCall{repo: repo})
		}
		return calls
	}

	logins := contributors.Logins()
	calls := make([]activityCall, 0, len(repos)*len(logins))
	for _, repo := range repos {
		for _, login := range logins {
			calls = append(calls, activityCall{repo: repo, creator: login})
		}
	}
	return calls
}
