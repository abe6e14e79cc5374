package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goSaaS/domain"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "x"))

	err := mapError(pgx.ErrNoRows, "user 7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "user 7")

	err = mapError(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: uniqueViolation}), "create user")
	assert.ErrorIs(t, err, domain.ErrConflict)

	other := errors.New("connection reset")
	err = mapError(other, "team 1")
	assert.ErrorIs(t, err, other)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestMigrationsEmbedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_init", migrations[0].Version)

	for _, table := range []string{"users", "teams", "team_members", "activity_logs", "invitations"} {
		assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

// The remaining tests need a disposable database.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("GOSAAS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GOSAAS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool, zerolog.Nop())
	require.NoError(t, err)
	return New(pool)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, time.Now().UnixNano())
}

func TestUserLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	email := uniqueEmail("Owner")
	u := &domain.User{Email: email, PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotZero(t, u.ID)
	assert.Equal(t, domain.RoleMember, u.Role)

	err := s.CreateUser(ctx, &domain.User{Email: strings.ToLower(email), PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.UserByEmail(ctx, email, domain.ScopeActive)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Name = "Owner"
	require.NoError(t, s.UpdateUser(ctx, got))

	require.NoError(t, s.SoftDeleteUser(ctx, u.ID, time.Now()))
	_, err = s.UserByID(ctx, u.ID, domain.ScopeActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := s.UserByID(ctx, u.ID, domain.ScopeAny)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
	assert.Equal(t, fmt.Sprintf("%s-%d-deleted", email, u.ID), deleted.Email)
	assert.ErrorIs(t, s.SoftDeleteUser(ctx, u.ID, time.Now()), domain.ErrNotFound)

	long := &domain.User{Email: strings.Repeat("l", 215) + uniqueEmail("long"), PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, long))
	require.NoError(t, s.SoftDeleteUser(ctx, long.ID, time.Now()))
	deleted, err = s.UserByID(ctx, long.ID, domain.ScopeAny)
	require.NoError(t, err)
	assert.Equal(t, domain.DeletedEmail(long.Email, long.ID), deleted.Email)
}

func TestTeamMembershipAndActivity(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := &domain.User{Email: uniqueEmail("member"), PasswordHash: "h", Role: domain.RoleAdmin}
	require.NoError(t, s.CreateUser(ctx, u))
	team := &domain.Team{Name: u.Email + "'s Team"}
	require.NoError(t, s.CreateTeam(ctx, team))
	m := &domain.TeamMember{UserID: u.ID, TeamID: team.ID, Role: domain.RoleAdmin}
	require.NoError(t, s.CreateTeamMember(ctx, m))

	got, err := s.MembershipForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.TeamID)

	members, err := s.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, u.Email, members[0].Email)

	require.NoError(t, s.UpdateTeamSubscription(ctx, team.ID, domain.SubscriptionUpdate{
		StripeCustomerID: "cus_" + u.Email, PlanName: "Base", SubscriptionStatus: "active",
	}))
	byCustomer, err := s.TeamByStripeCustomerID(ctx, "cus_"+u.Email)
	require.NoError(t, err)
	assert.Equal(t, "Base", byCustomer.PlanName)

	for _, action := range []domain.ActivityType{domain.ActivitySignUp, domain.ActivitySignIn} {
		require.NoError(t, s.AppendActivity(ctx, &domain.ActivityLog{
			TeamID: &team.ID, UserID: &u.ID, Action: action, IPAddress: strings.Repeat("f", 60),
		}))
	}
	logs, err := s.ActivityForUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActivitySignIn, logs[0].Action)
	assert.Len(t, logs[0].IPAddress, domain.MaxIPAddressLength)

	removed, err := s.RemoveTeamMember(ctx, m.ID, team.ID+1)
	require.NoError(t, err)
	assert.False(t, removed)
	removed, err = s.RemoveTeamMember(ctx, m.ID, team.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}
