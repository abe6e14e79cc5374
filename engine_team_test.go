package goSaaS

import (
	"context"
	"strconv"
	"testing"

	"github.com/MrEthical07/goSaaS/domain"
)

func TestInviteTeamMemberMessages(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.signUp(t, "admin@example.test", "password123")

	expectFormSuccess(t, admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "new@example.test", "role", "member"), MsgInvitationSent)
	expectFormError(t, admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "new@example.test", "role", "member"), MsgInvitationExists)
	expectFormError(t, admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "admin@example.test", "role", "admin"), MsgAlreadyMember)

	out := admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "x@example.test", "role", "owner")
	if out.Kind.String() != "validation_failed" || out.Message != "Invalid enum value. Expected 'member' | 'admin', received 'owner'" {
		t.Fatalf("outcome = %+v", out)
	}

	team := teamOf(t, h, admin)
	inv, err := h.store.PendingInvitation(context.Background(), team.ID, "new@example.test")
	if err != nil {
		t.Fatalf("pending invitation: %v", err)
	}
	member := h.signUp(t, "new@example.test", "password123", "inviteId", strconv.FormatInt(inv.ID, 10))

	expectFormError(t, member.mustSubmit(t, h.engine.InviteTeamMember, "email", "y@example.test", "role", "member"), MsgAdminOnlyInvite)
}

func TestRemoveTeamMember(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.signUp(t, "admin@example.test", "password123")
	admin.mustSubmit(t, h.engine.InviteTeamMember, "email", "member@example.test", "role", "member")

	team := teamOf(t, h, admin)
	inv, _ := h.store.PendingInvitation(context.Background(), team.ID, "member@example.test")
	member := h.signUp(t, "member@example.test", "password123", "inviteId", strconv.FormatInt(inv.ID, 10))

	var memberRow, adminRow MemberView
	for _, m := range teamOf(t, h, admin).Members {
		if m.Email == "member@example.test" {
			memberRow = m
		} else {
			adminRow = m
		}
	}

	expectFormError(t, member.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", strconv.FormatInt(adminRow.ID, 10)), MsgAdminOnlyRemove)
	expectFormError(t, admin.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", "9999"), MsgMemberNotFound)
	expectFormSuccess(t, admin.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", strconv.FormatInt(memberRow.ID, 10)), MsgMemberRemoved)

	if got := teamOf(t, h, admin); len(got.Members) != 1 {
		t.Fatalf("members = %+v", got.Members)
	}
	expectFormError(t, member.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", "1"), MsgNoTeam)

	out := admin.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", "abc")
	if out.Message != "Expected number, received nan" {
		t.Fatalf("outcome = %+v", out)
	}

	adminUser := currentUser(t, h, admin)
	activity := activityFor(h, adminUser.ID)
	if activity[len(activity)-1] != domain.ActivityRemoveTeamMember {
		t.Fatalf("activity = %v", activity)
	}
}

func TestAdminRemovingSelfDropsTeamFromSession(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.signUp(t, "admin@example.test", "password123")
	team := teamOf(t, h, admin)

	var before int64
	admin.do(func(ctx context.Context) {
		p, _ := h.engine.Sessions().Current(ctx)
		before = p.Expires.UnixMilli()
	})

	expectFormSuccess(t, admin.mustSubmit(t, h.engine.RemoveTeamMember, "memberId", strconv.FormatInt(team.Members[0].ID, 10)), MsgMemberRemoved)

	admin.do(func(ctx context.Context) {
		p, ok := h.engine.Sessions().Current(ctx)
		if !ok || p.TeamID != 0 {
			t.Errorf("payload = %+v, ok = %v", p, ok)
		}
		if p.Expires.UnixMilli() != before {
			t.Errorf("refresh moved expiry from %d to %d", before, p.Expires.UnixMilli())
		}
	})
	if team := teamOf(t, h, admin); team != nil {
		t.Fatalf("team = %+v", team)
	}
}
