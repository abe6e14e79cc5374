package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goSaaS/domain"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &domain.User{Email: "A@Example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, domain.RoleMember, u.Role)

	err := s.CreateUser(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.UserByEmail(ctx, "a@example.com", domain.ScopeActive)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.SoftDeleteUser(ctx, u.ID, time.Now()))

	_, err = s.UserByID(ctx, u.ID, domain.ScopeActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := s.UserByID(ctx, u.ID, domain.ScopeAny)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
	assert.Contains(t, deleted.Email, "-deleted")

	require.NoError(t, s.CreateUser(ctx, &domain.User{Email: "a@example.com"}), "email must be free after soft delete")

	long := &domain.User{Email: strings.Repeat("l", 243) + "@example.com"}
	require.NoError(t, s.CreateUser(ctx, long))
	require.NoError(t, s.SoftDeleteUser(ctx, long.ID, time.Now()))
	deleted, err = s.UserByID(ctx, long.ID, domain.ScopeAny)
	require.NoError(t, err)
	assert.Len(t, deleted.Email, domain.MaxEmailLength)
}

func TestMembershipAndInvitations(t *testing.T) {
	ctx := context.Background()
	s := New()

	owner := &domain.User{Email: "owner@example.com"}
	require.NoError(t, s.CreateUser(ctx, owner))
	team := &domain.Team{Name: "Acme"}
	require.NoError(t, s.CreateTeam(ctx, team))
	m := &domain.TeamMember{UserID: owner.ID, TeamID: team.ID, Role: domain.RoleAdmin}
	require.NoError(t, s.CreateTeamMember(ctx, m))

	first, err := s.MembershipForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, first.TeamID)

	byEmail, err := s.MemberByEmail(ctx, team.ID, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, m.ID, byEmail.ID)

	members, err := s.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner@example.com", members[0].Email)

	inv := &domain.Invitation{TeamID: team.ID, Email: "new@example.com", Role: domain.RoleMember, InvitedBy: owner.ID}
	require.NoError(t, s.CreateInvitation(ctx, inv))
	pending, err := s.PendingInvitation(ctx, team.ID, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, pending.ID)

	require.NoError(t, s.AcceptInvitation(ctx, inv.ID))
	_, err = s.PendingInvitation(ctx, team.ID, "new@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.AcceptInvitation(ctx, inv.ID), domain.ErrNotFound)

	removed, err := s.RemoveTeamMember(ctx, m.ID, team.ID+1)
	require.NoError(t, err)
	assert.False(t, removed, "member of another team must not be removed")

	removed, err = s.RemoveTeamMember(ctx, m.ID, team.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestActivityNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	uid := int64(7)
	other := int64(8)

	for i := 0; i < 12; i++ {
		require.NoError(t, s.AppendActivity(ctx, &domain.ActivityLog{UserID: &uid, Action: domain.ActivitySignIn}))
	}
	require.NoError(t, s.AppendActivity(ctx, &domain.ActivityLog{UserID: &other, Action: domain.ActivitySignOut}))
	require.NoError(t, s.AppendActivity(ctx, &domain.ActivityLog{UserID: &uid, Action: domain.ActivitySignOut}))

	logs, err := s.ActivityForUser(ctx, uid, 10)
	require.NoError(t, err)
	require.Len(t, logs, 10)
	assert.Equal(t, domain.ActivitySignOut, logs[0].Action)
	assert.Greater(t, logs[0].ID, logs[1].ID)
}

func TestSubscriptionUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	team := &domain.Team{Name: "Acme"}
	require.NoError(t, s.CreateTeam(ctx, team))

	require.NoError(t, s.UpdateTeamSubscription(ctx, team.ID, domain.SubscriptionUpdate{
		StripeCustomerID: "cus_1", StripeSubscriptionID: "sub_1", PlanName: "Plus", SubscriptionStatus: "active",
	}))
	got, err := s.TeamByStripeCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "Plus", got.PlanName)

	_, err = s.TeamByStripeCustomerID(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
