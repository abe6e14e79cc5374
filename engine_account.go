package goSaaS

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/domain"
)

// UpdatePassword changes the signed-in user's password.
func (e *Engine) UpdatePassword(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.updatePassword == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.updatePassword(ctx, in)
}

func (e *Engine) handleUpdatePassword(ctx context.Context, data updatePasswordForm, _ action.Input, user *domain.User) (action.Outcome[FormState], error) {
	ok, err := e.passwords.Verify(data.CurrentPassword, user.PasswordHash)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password digest rejected")
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChange, false, user.ID, 0, errInvalidCredentials, nil)
		return failure(MsgWrongCurrentPassword, nil), nil
	}
	if data.CurrentPassword == data.NewPassword {
		return failure(MsgPasswordUnchanged, nil), nil
	}
	if data.NewPassword != data.ConfirmPassword {
		return failure(MsgPasswordMismatch, nil), nil
	}

	digest, err := e.passwords.Hash(data.NewPassword)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("hash password: %w", err)
	}
	updated := *user
	updated.PasswordHash = digest
	if err := e.store.UpdateUser(ctx, &updated); err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("update password: %w", err)
	}

	teamID := e.teamIDFor(ctx, user.ID)
	e.logActivity(ctx, teamID, user.ID, domain.ActivityUpdatePassword)
	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, user.ID, teamID, nil, nil)
	return success(MsgPasswordUpdated), nil
}

// DeleteAccount soft-deletes the signed-in user after confirming the password, drops the
// team membership and signs the user out.
func (e *Engine) DeleteAccount(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.deleteAccount == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.deleteAccount(ctx, in)
}

func (e *Engine) handleDeleteAccount(ctx context.Context, data deleteAccountForm, _ action.Input, user *domain.User) (action.Outcome[FormState], error) {
	ok, err := e.passwords.Verify(data.Password, user.PasswordHash)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password digest rejected")
	}
	if !ok {
		return failure(MsgDeleteWrongPassword, nil), nil
	}

	teamID := e.teamIDFor(ctx, user.ID)
	e.logActivity(ctx, teamID, user.ID, domain.ActivityDeleteAccount)

	if err := e.store.SoftDeleteUser(ctx, user.ID, e.now().UTC()); err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("delete user %d: %w", user.ID, err)
	}
	if teamID != 0 {
		if err := e.store.RemoveMembershipsForUser(ctx, user.ID, teamID); err != nil {
			return action.Outcome[FormState]{}, fmt.Errorf("remove memberships: %w", err)
		}
	}
	if err := e.sessions.Destroy(ctx); err != nil {
		return action.Outcome[FormState]{}, err
	}

	e.metricInc(MetricSessionDestroyed)
	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditEventAccountDeleted, true, user.ID, teamID, nil, nil)
	return action.RedirectTo[FormState](action.SignInPath), nil
}

// UpdateAccount changes the signed-in user's name and email.
func (e *Engine) UpdateAccount(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.updateAccount == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.updateAccount(ctx, in)
}

func (e *Engine) handleUpdateAccount(ctx context.Context, data updateAccountForm, raw action.Input, user *domain.User) (action.Outcome[FormState], error) {
	echo := fields(raw, "name", "email")

	updated := *user
	updated.Name = data.Name
	updated.Email = normalizeEmail(data.Email)
	if err := e.store.UpdateUser(ctx, &updated); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return failure(MsgEmailTaken, echo), nil
		}
		return action.Outcome[FormState]{}, fmt.Errorf("update account: %w", err)
	}

	e.logActivity(ctx, e.teamIDFor(ctx, user.ID), user.ID, domain.ActivityUpdateAccount)
	e.metricInc(MetricAccountUpdated)
	return action.Continue(FormState{Success: MsgAccountUpdated, Fields: map[string]string{"name": data.Name}}), nil
}

// CurrentUser returns the signed-in user, or nil when there is no valid session or the
// user no longer exists.
func (e *Engine) CurrentUser(ctx context.Context) (*UserView, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	user, err := e.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return newUserView(user), nil
}

// ActivityLogs returns the signed-in user's most recent activity, newest first.
func (e *Engine) ActivityLogs(ctx context.Context) ([]ActivityView, error) {
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

	logs, err := e.store.ActivityForUser(ctx, user.ID, e.config.Activity.RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	out := make([]ActivityView, 0, len(logs))
	for _, l := range logs {
		out = append(out, ActivityView{ID: l.ID, Action: l.Action, Timestamp: l.Timestamp, IPAddress: l.IPAddress})
	}
	return out, nil
}

// teamIDFor returns the user's team id, or 0 when there is none or it cannot be read.
func (e *Engine) teamIDFor(ctx context.Context, userID int64) int64 {
	member, err := e.store.MembershipForUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.logger.Warn().Err(err).Int64("user_id", userID).Msg("load membership")
		}
		return 0
	}
	return member.TeamID
}

// HashPassword digests plain with the configured primary hasher. Seeding and import
// tools use it to create users that can sign in.
func (e *Engine) HashPassword(plain string) (string, error) {
	if e == nil || e.passwords == nil {
		return "", ErrEngineNotReady
	}
	return e.passwords.Hash(plain)
}
