package cmd

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/naka-gawa/osci-stats/internal/config"
	"github.com/naka-gawa/osci-stats/internal/contributors"
	"github.com/naka-gawa/osci-stats/internal/gateway"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// secondaryLimitSleep bounds a single wait on GitHub's secondary rate limit.
const secondaryLimitSleep = 1 * time.Hour

// newLogger discards all logs unless --verbose is set, in which case they go to standard error.
func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// addAPIFlags registers the flags needed to talk to the GitHub API.
func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "GitHub token (default: $"+config.TokenEnv+"; unauthenticated if empty)")
	cmd.Flags().String("api-url", "", "GitHub REST API base URL")
	cmd.Flags().Duration("timeout", 0, "Timeout for a single HTTP request (0 = none)")
	cmd.Flags().IntP("concurrency", "c", 0, "Maximum concurrent API calls (0 = unbounded)")
}

// addContributorFlags registers the flags locating the contributor list.
func addContributorFlags(cmd *cobra.Command) {
	cmd.Flags().String("contributors-url", "", "URL of a newline-separated contributor list (overrides --contributors-file)")
	cmd.Flags().String("contributors-file", "", "Path of a newline-separated contributor list (default \""+config.DefaultContributorsFile+"\")")
}

// loadConfig reads the config file and overlays every flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags into cfg. Flags the command does
// not define are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	setString := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	setString("owner", &cfg.Owner)
	setString("since", &cfg.Since)
	setString("contributors-url", &cfg.ContributorsURL)
	setString("contributors-file", &cfg.ContributorsFile)
	setString("strategy", &cfg.Strategy)
	setString("format", &cfg.Format)
	setString("api-url", &cfg.APIURL)

	if err == nil && flags.Changed("concurrency") {
		cfg.Concurrency, err = flags.GetInt("concurrency")
	}
	if err == nil && flags.Changed("rate") {
		cfg.RequestsPerSecond, err = flags.GetFloat64("rate")
	}
	if err == nil && flags.Changed("wait-secondary-limit") {
		cfg.WaitSecondaryLimit, err = flags.GetBool("wait-secondary-limit")
	}
	if err == nil && flags.Changed("timeout") {
		cfg.RequestTimeout, err = flags.GetDuration("timeout")
	}
	return err
}

// resolveToken prefers --token over the environment.
func resolveToken(cmd *cobra.Command) string {
	if cmd.Flags().Changed("token") {
		token, _ := cmd.Flags().GetString("token")
		return token
	}
	return config.Token()
}

// newGitHubClient builds the authenticated REST client from the run configuration.
func newGitHubClient(cfg *config.Config, token string, logger *log.Logger) (*gateway.Client, error) {
	opts := []gateway.ClientOption{
		gateway.WithLogger(logger),
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithRateLimit(cfg.RequestsPerSecond),
	}
	if cfg.WaitSecondaryLimit {
		opts = append(opts, gateway.WithSecondaryRateLimitWaiter(secondaryLimitSleep))
	}
	return gateway.NewClient(token, opts...)
}

func contributorSource(cfg *config.Config) contributors.Source {
	return contributors.Source{URL: cfg.ContributorsURL, Path: cfg.ContributorsFile}
}

func plainHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeout}
}
