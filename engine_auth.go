package goSaaS

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/internal/rate"
)

// SignIn authenticates email and password, issues a session and redirects to the
// dashboard, or into checkout when the form carries redirect=checkout and a priceId.
// Unknown emails and wrong passwords share one message and leave no trace in the
// activity log.
func (e *Engine) SignIn(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.signIn == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.signIn(ctx, in)
}

func (e *Engine) handleSignIn(ctx context.Context, data signInForm, raw action.Input) (action.Outcome[FormState], error) {
	email := normalizeEmail(data.Email)
	ip := ClientIP(ctx)
	echo := fields(raw, "email")

	if err := e.limiter.CheckSignIn(ctx, email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricSignInRateLimited)
			e.emitAudit(ctx, auditEventSignInRateLimited, false, 0, 0, ErrSignInRateLimited, func() map[string]string {
				return map[string]string{"email": email}
			})
			return failure(MsgSignInRateLimited, echo), nil
		}
		return action.Outcome[FormState]{}, fmt.Errorf("sign-in limiter: %w", err)
	}

	user, err := e.store.UserByEmail(ctx, email, domain.ScopeActive)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return e.rejectSignIn(ctx, email, ip, 0, echo), nil
		}
		return action.Outcome[FormState]{}, fmt.Errorf("sign-in lookup: %w", err)
	}

	ok, err := e.passwords.Verify(data.Password, user.PasswordHash)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password digest rejected")
	}
	if !ok {
		return e.rejectSignIn(ctx, email, ip, user.ID, echo), nil
	}

	if err := e.limiter.ResetSignIn(ctx, email, ip); err != nil {
		e.logger.Warn().Err(err).Msg("reset sign-in counters")
	}
	e.upgradeDigest(ctx, user, data.Password)

	member, team, err := e.membership(ctx, user.ID)
	if err != nil {
		return action.Outcome[FormState]{}, err
	}

	teamID, role := sessionIdentity(user, member)
	if err := e.sessions.Create(ctx, user.ID, teamID, role); err != nil {
		return action.Outcome[FormState]{}, err
	}
	e.metricInc(MetricSessionCreated)
	e.logActivity(ctx, teamID, user.ID, domain.ActivitySignIn)
	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignInSuccess, true, user.ID, teamID, nil, nil)

	if data.Redirect == "checkout" && data.PriceID != "" {
		return e.startCheckout(ctx, user.ID, team, data.PriceID)
	}
	return action.RedirectTo[FormState](DashboardPath), nil
}

func (e *Engine) rejectSignIn(ctx context.Context, email, ip string, userID int64, echo map[string]string) action.Outcome[FormState] {
	if err := e.limiter.RecordSignInFailure(ctx, email, ip); err != nil {
		e.logger.Warn().Err(err).Msg("record sign-in failure")
	}
	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditEventSignInFailure, false, userID, 0, errInvalidCredentials, nil)
	return failure(MsgInvalidCredentials, echo)
}

// upgradeDigest rewrites a legacy or under-cost digest after a successful sign-in.
// Failures are logged; the sign-in proceeds with the old digest.
func (e *Engine) upgradeDigest(ctx context.Context, user *domain.User, plain string) {
	if !e.config.Password.UpgradeOnSignIn {
		return
	}
	needs, err := e.passwords.NeedsUpgrade(user.PasswordHash)
	if err != nil || !needs {
		return
	}
	digest, err := e.passwords.Hash(plain)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("rehash password")
		return
	}
	updated := *user
	updated.PasswordHash = digest
	if err := e.store.UpdateUser(ctx, &updated); err != nil {
		e.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("store rehashed password")
		return
	}
	user.PasswordHash = digest
	e.metricInc(MetricPasswordRehashed)
	e.emitAudit(ctx, auditEventPasswordRehash, true, user.ID, 0, nil, nil)
}

// SignUp creates an account. With an inviteId the user joins the inviting team in the
// invited role; otherwise a new team is created with the user as admin.
func (e *Engine) SignUp(ctx context.Context, in action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.signUp == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}
	return e.signUp(ctx, in)
}

func (e *Engine) handleSignUp(ctx context.Context, data signUpForm, raw action.Input) (action.Outcome[FormState], error) {
	email := normalizeEmail(data.Email)
	echo := fields(raw, "email")

	if err := e.limiter.AllowSignUp(ctx, ClientIP(ctx)); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricSignUpRateLimited)
			e.emitAudit(ctx, auditEventSignUpRateLimited, false, 0, 0, ErrSignUpRateLimited, nil)
			return failure(MsgSignUpRateLimited, echo), nil
		}
		return action.Outcome[FormState]{}, fmt.Errorf("sign-up limiter: %w", err)
	}

	_, err := e.store.UserByEmail(ctx, email, domain.ScopeActive)
	switch {
	case err == nil:
		return e.rejectSignUp(ctx, domain.ErrConflict, echo), nil
	case !errors.Is(err, domain.ErrNotFound):
		return action.Outcome[FormState]{}, fmt.Errorf("sign-up lookup: %w", err)
	}

	var invitation *domain.Invitation
	if data.InviteID != "" {
		invitation, err = e.pendingInvitationFor(ctx, data.InviteID, email)
		if err != nil {
			return action.Outcome[FormState]{}, err
		}
		if invitation == nil {
			e.metricInc(MetricSignUpInvalidInvitation)
			e.emitAudit(ctx, auditEventSignUpFailure, false, 0, 0, errInvalidInvitation, nil)
			return failure(MsgInvalidInvitation, echo), nil
		}
	}

	digest, err := e.passwords.Hash(data.Password)
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Email: email, PasswordHash: digest, Role: domain.RoleMember}
	if err := e.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return e.rejectSignUp(ctx, err, echo), nil
		}
		return action.Outcome[FormState]{}, fmt.Errorf("create user: %w", err)
	}

	var (
		team *domain.Team
		role domain.Role
	)
	if invitation != nil {
		team, err = e.store.TeamByID(ctx, invitation.TeamID)
		if err != nil {
			return action.Outcome[FormState]{}, fmt.Errorf("load invited team: %w", err)
		}
		if err := e.store.AcceptInvitation(ctx, invitation.ID); err != nil {
			return action.Outcome[FormState]{}, fmt.Errorf("accept invitation: %w", err)
		}
		role = invitation.Role
		e.logActivity(ctx, team.ID, user.ID, domain.ActivityAcceptInvitation)
	} else {
		team = &domain.Team{Name: email + "'s Team"}
		if err := e.store.CreateTeam(ctx, team); err != nil {
			e.logger.Error().Err(err).Int64("user_id", user.ID).Msg("create team")
			return failure(MsgCreateTeamFailed, echo), nil
		}
		role = domain.RoleAdmin
		e.logActivity(ctx, team.ID, user.ID, domain.ActivityCreateTeam)
	}

	member := &domain.TeamMember{UserID: user.ID, TeamID: team.ID, Role: role}
	if err := e.store.CreateTeamMember(ctx, member); err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("create membership: %w", err)
	}
	e.logActivity(ctx, team.ID, user.ID, domain.ActivitySignUp)

	if err := e.sessions.Create(ctx, user.ID, team.ID, role); err != nil {
		return action.Outcome[FormState]{}, err
	}
	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUpSuccess, true, user.ID, team.ID, nil, nil)

	if data.Redirect == "checkout" && data.PriceID != "" {
		return e.startCheckout(ctx, user.ID, team, data.PriceID)
	}
	return action.RedirectTo[FormState](DashboardPath), nil
}

func (e *Engine) rejectSignUp(ctx context.Context, err error, echo map[string]string) action.Outcome[FormState] {
	e.metricInc(MetricSignUpConflict)
	e.emitAudit(ctx, auditEventSignUpFailure, false, 0, 0, err, nil)
	return failure(MsgCreateUserFailed, echo)
}

// pendingInvitationFor returns nil without error when raw does not name a pending
// invitation addressed to email.
func (e *Engine) pendingInvitationFor(ctx context.Context, raw, email string) (*domain.Invitation, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, nil
	}
	inv, err := e.store.InvitationByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load invitation %d: %w", id, err)
	}
	if inv.Status != domain.InvitationPending || !strings.EqualFold(inv.Email, email) {
		return nil, nil
	}
	return inv, nil
}

// SignOut records the sign-out, clears the cookie and redirects to the sign-in page.
// It succeeds without a session.
func (e *Engine) SignOut(ctx context.Context, _ action.Input) (action.Outcome[FormState], error) {
	if e == nil || e.sessions == nil {
		return action.Outcome[FormState]{}, ErrEngineNotReady
	}

	p, _ := e.sessions.Current(ctx)
	e.logActivity(ctx, p.TeamID, p.UserID, domain.ActivitySignOut)

	if err := e.sessions.Destroy(ctx); err != nil {
		return action.Outcome[FormState]{}, err
	}
	e.metricInc(MetricSessionDestroyed)
	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, auditEventSignOut, true, p.UserID, p.TeamID, nil, nil)
	return action.RedirectTo[FormState](action.SignInPath), nil
}

// membership returns the user's membership and team, both nil when the user has none.
func (e *Engine) membership(ctx context.Context, userID int64) (*domain.TeamMember, *domain.Team, error) {
	member, err := e.store.MembershipForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("load membership: %w", err)
	}
	team, err := e.store.TeamByID(ctx, member.TeamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return member, nil, nil
		}
		return nil, nil, fmt.Errorf("load team %d: %w", member.TeamID, err)
	}
	return member, team, nil
}

func sessionIdentity(user *domain.User, member *domain.TeamMember) (int64, domain.Role) {
	if member == nil {
		return 0, user.Role
	}
	return member.TeamID, member.Role
}

func (e *Engine) startCheckout(ctx context.Context, userID int64, team *domain.Team, priceID string) (action.Outcome[FormState], error) {
	if team == nil {
		return action.RedirectTo[FormState](PricingPath), nil
	}
	url, err := e.billing.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		PriceID:           priceID,
		CustomerID:        team.StripeCustomerID,
		ClientReferenceID: strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return action.Outcome[FormState]{}, fmt.Errorf("create checkout session: %w", err)
	}
	e.metricInc(MetricCheckoutStarted)
	return action.RedirectTo[FormState](url), nil
}
