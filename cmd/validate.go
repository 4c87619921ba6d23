package cmd

import (
	"fmt"

	"github.com/naka-gawa/osci-stats/internal/contributors"
	"github.com/naka-gawa/osci-stats/internal/gateway"
	"github.com/naka-gawa/osci-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks that every tracked contributor is an existing GitHub user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logins, err := contributors.Load(ctx, contributorSource(cfg), plainHTTPClient(cfg))
		if err != nil {
			return fmt.Errorf("failed to load contributors from %s: %w", contributorSource(cfg), err)
		}

		accounts, err := gateway.NewAccountService(resolveToken(cmd), cfg.APIURL, plainHTTPClient(cfg), logger)
		if err != nil {
			return err
		}
		invalid, err := usecase.NewValidator(accounts, logger, cfg.Concurrency).Validate(ctx, logins)
		if err != nil {
			return fmt.Errorf("failed to validate contributors: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(invalid) == 0 {
			fmt.Fprintln(out, "All contributors are valid GitHub users.")
			return nil
		}
		fmt.Fprintln(out, "The following users are not valid GitHub users:")
		for _, login := range invalid {
			fmt.Fprintln(out, login)
		}
		return fmt.Errorf("%d of %d contributors are not valid GitHub users", len(invalid), len(logins))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addAPIFlags(validateCmd)
	addContributorFlags(validateCmd)
}
