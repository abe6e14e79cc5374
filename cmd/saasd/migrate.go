package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/goSaaS/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings
			logger := s.Logger()
			if s.PostgresURL == "" {
				return errors.New("POSTGRES_URL is required")
			}
			pool, err := postgres.Connect(cmd.Context(), s.PostgresURL)
			if err != nil {
				return logSetup(logger, "connect", err)
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool, logger)
			if err != nil {
				return logSetup(logger, "migrate", err)
			}
			logger.Info().Strs("applied", applied).Msg("migrations complete")
			return nil
		},
	}
}
