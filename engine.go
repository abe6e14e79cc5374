package goSaaS

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/goSaaS/action"
	"github.com/MrEthical07/goSaaS/billing"
	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/internal/audit"
	"github.com/MrEthical07/goSaaS/internal/rate"
	"github.com/MrEthical07/goSaaS/password"
	"github.com/MrEthical07/goSaaS/session"
)

// Paths the engine redirects to.
const (
	DashboardPath = "/dashboard"
	PricingPath   = "/pricing"
)

// Engine runs the account, team and billing actions. Build it with [Builder]; it is safe
// for concurrent use.
type Engine struct {
	config    Config
	store     domain.Store
	sessions  *session.Manager
	guards    *action.Guards
	passwords *password.Chain
	limiter   *rate.Limiter
	billing   billing.Provider
	audit     *audit.Dispatcher
	metrics   *Metrics
	redis     redis.UniversalClient
	logger    zerolog.Logger
	now       func() time.Time
	closers   []func() error

	signIn           action.Action[FormState]
	signUp           action.Action[FormState]
	updatePassword   action.Action[FormState]
	deleteAccount    action.Action[FormState]
	updateAccount    action.Action[FormState]
	removeTeamMember action.Action[FormState]
	inviteTeamMember action.Action[FormState]
	checkout         action.Action[FormState]
	customerPortal   action.Action[FormState]
}

// Close stops the audit dispatcher and releases in-memory limiter state.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	for _, c := range e.closers {
		_ = c()
	}
}

// Sessions exposes the session manager for transport middleware.
func (e *Engine) Sessions() *session.Manager {
	if e == nil {
		return nil
	}
	return e.sessions
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// AuditDropped returns how many audit events were dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
			Guards:   map[GuardKey]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

/*
====================================
FORMS
====================================
*/

type signInForm struct {
	Email    string `form:"email" validate:"email,min=3,max=255"`
	Password string `form:"password" validate:"min=8,max=100"`
	Redirect string `form:"redirect"`
	PriceID  string `form:"priceId"`
}

type signUpForm struct {
	Email    string `form:"email" validate:"email"`
	Password string `form:"password" validate:"min=8"`
	InviteID string `form:"inviteId"`
	Redirect string `form:"redirect"`
	PriceID  string `form:"priceId"`
}

type updatePasswordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"min=8,max=100"`
	NewPassword     string `form:"newPassword" validate:"min=8,max=100"`
	ConfirmPassword string `form:"confirmPassword" validate:"min=8,max=100"`
}

type deleteAccountForm struct {
	Password string `form:"password" validate:"min=8,max=100"`
}

type updateAccountForm struct {
	Name  string `form:"name" validate:"min=1,max=100" msg:"Name is required"`
	Email string `form:"email" validate:"email"`
}

type removeTeamMemberForm struct {
	MemberID int64 `form:"memberId" validate:"required"`
}

type inviteTeamMemberForm struct {
	Email string `form:"email" validate:"email"`
	Role  string `form:"role" validate:"oneof=member admin"`
}

// buildActions composes every form action from its schema and guard once.
func (e *Engine) buildActions() {
	e.signIn = action.Validated(action.NewSchema[signInForm](), e.handleSignIn)
	e.signUp = action.Validated(action.NewSchema[signUpForm](), e.handleSignUp)
	e.updatePassword = action.ValidatedWithUser(e.guards, action.NewSchema[updatePasswordForm](), e.handleUpdatePassword)
	e.deleteAccount = action.ValidatedWithUser(e.guards, action.NewSchema[deleteAccountForm](), e.handleDeleteAccount)
	e.updateAccount = action.ValidatedWithUser(e.guards, action.NewSchema[updateAccountForm](), e.handleUpdateAccount)
	e.removeTeamMember = action.ValidatedWithUser(e.guards, action.NewSchema[removeTeamMemberForm](), e.handleRemoveTeamMember)
	e.inviteTeamMember = action.ValidatedWithUser(e.guards, action.NewSchema[inviteTeamMemberForm](), e.handleInviteTeamMember)
	e.checkout = action.WithTeam(e.guards, e.handleCheckout)
	e.customerPortal = action.WithTeam(e.guards, e.handleCustomerPortal)
}

/*
====================================
ACTIVITY
====================================
*/

// logActivity appends one activity row. A failed append is logged and counted; it never
// fails the action that triggered it.
func (e *Engine) logActivity(ctx context.Context, teamID, userID int64, kind domain.ActivityType) {
	entry := &domain.ActivityLog{
		Action:    kind,
		IPAddress: ClientIP(ctx),
	}
	if teamID != 0 {
		entry.TeamID = &teamID
	}
	if userID != 0 {
		entry.UserID = &userID
	}

	if err := e.store.AppendActivity(ctx, entry); err != nil {
		e.metricInc(MetricActivityAppendFailed)
		e.logger.Error().Err(err).Str("action", string(kind)).Int64("user_id", userID).Msg("append activity")
		e.emitAudit(ctx, auditEventActivityAppendFailed, false, userID, teamID, err, func() map[string]string {
			return map[string]string{"action": string(kind)}
		})
		return
	}
	e.metricInc(MetricActivityAppended)
}

// fields echoes the named inputs back to a form.
func fields(raw action.Input, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = raw.Get(n)
	}
	return out
}

func failure(message string, echo map[string]string) action.Outcome[FormState] {
	return action.Continue(FormState{Error: message, Fields: echo})
}

func success(message string) action.Outcome[FormState] {
	return action.Continue(FormState{Success: message})
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Input builds action input from key/value pairs. Tests and callers that do not start
// from an HTTP form use it.
func Input(pairs ...string) action.Input {
	in := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		in.Add(pairs[i], pairs[i+1])
	}
	return in
}
