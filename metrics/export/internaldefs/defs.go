package internaldefs

import (
	goSaaS "github.com/MrEthical07/goSaaS"
)

// Namespace prefixes every exported series.
const Namespace = "gosaas"

// CounterDef maps one engine counter to its exported name.
type CounterDef struct {
	ID   goSaaS.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: goSaaS.MetricSignInSuccess, Name: "gosaas_sign_in_success_total", Help: "Successful sign-ins."},
	{ID: goSaaS.MetricSignInFailure, Name: "gosaas_sign_in_failure_total", Help: "Sign-ins rejected for bad credentials."},
	{ID: goSaaS.MetricSignInRateLimited, Name: "gosaas_sign_in_rate_limited_total", Help: "Sign-ins refused by the failure budget."},
	{ID: goSaaS.MetricSignUpSuccess, Name: "gosaas_sign_up_success_total", Help: "Completed sign-ups."},
	{ID: goSaaS.MetricSignUpConflict, Name: "gosaas_sign_up_conflict_total", Help: "Sign-ups rejected because the email exists."},
	{ID: goSaaS.MetricSignUpRateLimited, Name: "gosaas_sign_up_rate_limited_total", Help: "Sign-ups refused by the attempt budget."},
	{ID: goSaaS.MetricSignUpInvalidInvitation, Name: "gosaas_sign_up_invalid_invitation_total", Help: "Sign-ups with an unusable invitation."},
	{ID: goSaaS.MetricSignOut, Name: "gosaas_sign_out_total", Help: "Sign-outs."},
	{ID: goSaaS.MetricSessionCreated, Name: "gosaas_session_created_total", Help: "Session cookies issued."},
	{ID: goSaaS.MetricSessionRefreshed, Name: "gosaas_session_refreshed_total", Help: "Session cookies re-signed with the same expiry."},
	{ID: goSaaS.MetricSessionDestroyed, Name: "gosaas_session_destroyed_total", Help: "Session cookies cleared."},
	{ID: goSaaS.MetricSessionValid, Name: "gosaas_session_valid_total", Help: "Requests carrying a valid session."},
	{ID: goSaaS.MetricSessionAbsent, Name: "gosaas_session_absent_total", Help: "Requests without a session cookie."},
	{ID: goSaaS.MetricSessionExpired, Name: "gosaas_session_expired_total", Help: "Requests carrying an expired session."},
	{ID: goSaaS.MetricSessionTampered, Name: "gosaas_session_tampered_total", Help: "Requests carrying a session that failed verification."},
	{ID: goSaaS.MetricPasswordChangeSuccess, Name: "gosaas_password_change_success_total", Help: "Password changes."},
	{ID: goSaaS.MetricPasswordChangeInvalidOld, Name: "gosaas_password_change_invalid_old_total", Help: "Password changes with a wrong current password."},
	{ID: goSaaS.MetricPasswordRehashed, Name: "gosaas_password_rehashed_total", Help: "Digests upgraded on sign-in."},
	{ID: goSaaS.MetricAccountUpdated, Name: "gosaas_account_updated_total", Help: "Account detail updates."},
	{ID: goSaaS.MetricAccountDeleted, Name: "gosaas_account_deleted_total", Help: "Account deletions."},
	{ID: goSaaS.MetricTeamMemberRemoved, Name: "gosaas_team_member_removed_total", Help: "Team members removed."},
	{ID: goSaaS.MetricTeamMemberInvited, Name: "gosaas_team_member_invited_total", Help: "Invitations created."},
	{ID: goSaaS.MetricCheckoutStarted, Name: "gosaas_checkout_started_total", Help: "Checkout sessions started."},
	{ID: goSaaS.MetricCheckoutCompleted, Name: "gosaas_checkout_completed_total", Help: "Checkout sessions completed."},
	{ID: goSaaS.MetricSubscriptionUpdated, Name: "gosaas_subscription_updated_total", Help: "Subscription changes applied from webhooks."},
	{ID: goSaaS.MetricActivityAppended, Name: "gosaas_activity_appended_total", Help: "Activity log rows written."},
	{ID: goSaaS.MetricActivityAppendFailed, Name: "gosaas_activity_append_failed_total", Help: "Activity log writes that failed."},
}

// GuardOutcomes is the labelled counter for authorization guard results.
var GuardOutcomes = struct {
	Name   string
	Help   string
	Labels []string
}{
	Name:   "gosaas_guard_outcomes_total",
	Help:   "Guarded action results by guard and outcome.",
	Labels: []string{"guard", "outcome"},
}

// AuditDropped is the counter for audit events lost to backpressure.
var AuditDropped = CounterDef{
	Name: "gosaas_audit_dropped_total",
	Help: "Audit events dropped because the dispatcher buffer was full.",
}
