package goSaaS

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/domain"
)

// RemoveTeamMember removes a membership from the acting admin's team.
func (e *Engine) RemoveTeamMember(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.removeTeamMember == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.removeTeamMember(ctx, in)
}

func (e *Engine) handleRemoveTeamMember(ctx context.Context, data removeTeamMemberForm, _ action.Input, user *domain.User) (action.Outcome[FormState], error) {
	actor, _, err := e.membership(ctx, user.ID)
	if err != nil {
		return action.Outcome[FormState]{}, err
	}
	if actor == nil {
		return failure(MsgNoTeam, nil), nil
	}
	if actor.Role != domain.RoleAdmin {
		return failure(MsgAdminOnlyRemove, nil), nil
	}

	removed, err := e.store.RemoveTeamMember(ctx, data.MemberID, actor.TeamID)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("remove member %d: %w", data.MemberID, err)
	}
	if !removed {
		return failure(MsgMemberNotFound, nil), nil
	}

	e.logActivity(ctx, actor.TeamID, user.ID, domain.ActivityRemoveTeamMember)
	e.metricInc(MetricTeamMemberRemoved)

	// An admin who removed their own membership keeps the session but loses the team.
	if data.MemberID == actor.ID {
		if err := e.sessions.Refresh(ctx, user.ID, 0, user.Role); err != nil {
			return action.Outcome[FormState]{}, err
		}
		e.metricInc(MetricSessionRefreshed)
	}
	return success(MsgMemberRemoved), nil
}

// InviteTeamMember records a pending invitation to the acting admin's team. Delivery of
// the invitation is left to the caller.
func (e *Engine) InviteTeamMember(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.inviteTeamMember == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.inviteTeamMember(ctx, in)
}

func (e *Engine) handleInviteTeamMember(ctx context.Context, data inviteTeamMemberForm, raw action.Input, user *domain.User) (action.Outcome[FormState], error) {
	echo := fields(raw, "email", "role")
	email := normalizeEmail(data.Email)

	actor, _, err := e.membership(ctx, user.ID)
	if err != nil {
		return action.Outcome[FormState]{}, err
	}
	if actor == nil {
		return failure(MsgNoTeam, echo), nil
	}
	if actor.Role != domain.RoleAdmin {
		return failure(MsgAdminOnlyInvite, echo), nil
	}

	if _, err := e.store.MemberByEmail(ctx, actor.TeamID, email); err == nil {
		return failure(MsgAlreadyMember, echo), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return action.Outcome[FormState]{}, fmt.Errorf("check membership: %w", err)
	}

	if _, err := e.store.PendingInvitation(ctx, actor.TeamID, email); err == nil {
		return failure(MsgInvitationExists, echo), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return action.Outcome[FormState]{}, fmt.Errorf("check invitations: %w", err)
	}

	inv := &domain.Invitation{
		TeamID:    actor.TeamID,
		Email:     email,
		Role:      domain.Role(data.Role),
		InvitedBy: user.ID,
		Status:    domain.InvitationPending,
	}
	if err := e.store.CreateInvitation(ctx, inv); err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("create invitation: %w", err)
	}

	e.logActivity(ctx, actor.TeamID, user.ID, domain.ActivityInviteTeamMember)
	e.metricInc(MetricTeamMemberInvited)
	e.logger.Info().Int64("team_id", actor.TeamID).Int64("invitation_id", inv.ID).Msg("invitation created")
	return success(MsgInvitationSent), nil
}

// TeamForUser returns the signed-in user's team with its members, or nil when the user
// belongs to none.
func (e *Engine) TeamForUser(ctx context.Context) (*TeamView, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	user, err := e.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, action.ErrUnauthenticated
	}

	_, team, err := e.membership(ctx, user.ID)
	if err != nil || team == nil {
		return nil, err
	}
	members, err := e.store.TeamMembers(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return newTeamView(team, members), nil
}
