package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	goSaaS "github.com/MrEthical07/goSaaS"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/postgres"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		email    string
		password string
		teamName string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a sign-in-ready admin user and team",
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

			store := postgres.New(pool)
			engine, err := goSaaS.New().WithConfig(s.EngineConfig()).WithStore(store).WithLogger(logger).Build()
			if err != nil {
				return err
			}
			defer engine.Close()

			userID, err := seed(cmd.Context(), engine, store, email, password, teamName)
			if err != nil {
				return logSetup(logger, "seed", err)
			}
			logger.Info().Int64("user_id", userID).Str("email", email).Msg("seed complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "test@test.com", "seed user email")
	cmd.Flags().StringVar(&password, "password", "admin123", "seed user password")
	cmd.Flags().StringVar(&teamName, "team", "Test Team", "seed team name")
	return cmd
}

// seed is idempotent on the email: an existing user is left untouched.
func seed(ctx context.Context, engine *goSaaS.Engine, store domain.Store, email, plain, teamName string) (int64, error) {
	if u, err := store.UserByEmail(ctx, email, domain.ScopeAny); err == nil {
		return u.ID, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}

	digest, err := engine.HashPassword(plain)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Email: email, PasswordHash: digest, Role: domain.RoleAdmin}
	if err := store.CreateUser(ctx, user); err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	team := &domain.Team{Name: teamName}
	if err := store.CreateTeam(ctx, team); err != nil {
		return 0, fmt.Errorf("create team: %w", err)
	}
	if err := store.CreateTeamMember(ctx, &domain.TeamMember{UserID: user.ID, TeamID: team.ID, Role: domain.RoleAdmin}); err != nil {
		return 0, fmt.Errorf("create membership: %w", err)
	}
	return user.ID, nil
}
