package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/naka-gawa/osci-stats/internal/gateway"
	"github.com/spf13/cobra"
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Shows the remaining GitHub API quota",
	Long:  `Displays the GitHub API rate limit status for the REST core and search APIs, and for GraphQL when a token is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		accounts, err := gateway.NewAccountService(resolveToken(cmd), cfg.APIURL, plainHTTPClient(cfg), newLogger(cmd))
		if err != nil {
			return err
		}
		limits, err := accounts.RateLimits(cmd.Context())
		if err != nil {
			return err
		}
		printRateLimits(cmd.OutOrStdout(), limits, time.Now())
		return nil
	},
}

func printRateLimits(w io.Writer, limits []gateway.RateLimit, now time.Time) {
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	for _, l := range limits {
		resetIn := l.ResetAt.Sub(now).Round(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Fprintf(w, "  %-8s %d/%d remaining (resets in %s)\n", l.Resource+":", l.Remaining, l.Limit, resetIn)
	}
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
	rateLimitCmd.Flags().String("token", "", "GitHub token (default: $GITHUB_TOKEN)")
	rateLimitCmd.Flags().String("api-url", "", "GitHub REST API base URL")
}
