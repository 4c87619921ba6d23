package cmd

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/naka-gawa/osci-stats/internal/config"
	"github.com/naka-gawa/osci-stats/internal/contributors"
	"github.com/naka-gawa/osci-stats/internal/domain"
	"github.com/naka-gawa/osci-stats/internal/gateway"
	"github.com/naka-gawa/osci-stats/internal/output"
	"github.com/naka-gawa/osci-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregates contributor activity per repository of an organization",
	Long: `Counts the pull requests opened, pull requests merged and issues opened by the
tracked contributors in every public repository of an organization, and prints
one entry per repository with activity.

The --since date is forwarded to GitHub, which compares it with the last
update time of each issue or pull request, not its creation time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runStats(cmd.Context(), cfg, resolveToken(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	},
}

// runStats loads the contributors, aggregates their activity and prints the report.
// Nothing is printed unless the whole aggregation succeeds.
func runStats(ctx context.Context, cfg *config.Config, token string, out, errOut io.Writer, logger *log.Logger) error {
	logins, err := contributors.Load(ctx, contributorSource(cfg), plainHTTPClient(cfg))
	if err != nil {
		return fmt.Errorf("failed to load contributors from %s: %w", contributorSource(cfg), err)
	}

	if token == "" {
		fmt.Fprintf(errOut, "Warning: %s is not set; unauthenticated requests are subject to a low rate limit.\n", config.TokenEnv)
	}

	// Inject dependencies and run the main business logic.
	client, err := newGitHubClient(cfg, token, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	strategy, err := domain.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	aggregator := usecase.NewAggregator(
		gateway.NewGitHubGateway(client, cfg.APIURL, logger),
		logger,
		usecase.WithStrategy(strategy),
		usecase.WithConcurrency(cfg.Concurrency),
	)

	report, err := aggregator.Aggregate(ctx, usecase.Request{
		Owner:        cfg.Owner,
		Since:        cfg.Since,
		Contributors: domain.NewContributorSet(logins),
	})
	if err != nil {
		if gateway.IsRateLimited(err) {
			return fmt.Errorf("GitHub rate limit exhausted, set %s or try again later: %w", config.TokenEnv, err)
		}
		return fmt.Errorf("failed to aggregate stats: %w", err)
	}

	return output.NewFormatter(output.Format(cfg.Format)).Format(report, out)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("owner", "o", config.DefaultOwner, "Target GitHub organization name")
	statsCmd.Flags().StringP("since", "s", config.DefaultSince, "Start date for stats (YYYY-MM-DD, empty for no cutoff)")
	statsCmd.Flags().String("strategy", string(domain.StrategyPerRepository), "Fan-out strategy: per-repository or per-contributor")
	statsCmd.Flags().Float64("rate", 0, "Maximum requests per second (0 = unlimited)")
	statsCmd.Flags().Bool("wait-secondary-limit", false, "Sleep through GitHub secondary rate limits instead of failing")
	statsCmd.Flags().StringP("format", "f", config.FormatText, "Output format (text, json)")
	addAPIFlags(statsCmd)
	addContributorFlags(statsCmd)
}
